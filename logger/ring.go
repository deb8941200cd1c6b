package logger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultRingSize is the number of recent log lines kept for the live stream.
const DefaultRingSize = 200

// Ring keeps the most recent formatted log lines. Every line gets a sequence
// number so readers can resume where they stopped.
type Ring struct {
	mu    sync.Mutex
	lines []string
	size  int
	next  int // sequence number of the next line
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{size: size, lines: make([]string, 0, size)}
}

// Add appends a line, dropping the oldest one when full.
func (r *Ring) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == r.size {
		copy(r.lines, r.lines[1:])
		r.lines = r.lines[:r.size-1]
	}
	r.lines = append(r.lines, line)
	r.next++
}

// Since returns the lines with sequence number >= cursor still held and the
// cursor to pass on the next call.
func (r *Ring) Since(cursor int) ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oldest := r.next - len(r.lines)
	if cursor < oldest {
		cursor = oldest
	}
	if cursor >= r.next {
		return nil, r.next
	}
	out := make([]string, r.next-cursor)
	copy(out, r.lines[cursor-oldest:])
	return out, r.next
}

// Lines returns every line held, oldest first.
func (r *Ring) Lines() []string {
	lines, _ := r.Since(0)
	return lines
}

// hook formats zap entries as "[15:04:05] INFO - message".
func (r *Ring) hook(e zapcore.Entry) error {
	r.Add(formatLine(e.Time, e.Level, e.Message))
	return nil
}

func formatLine(t time.Time, level zapcore.Level, msg string) string {
	return fmt.Sprintf("[%s] %s - %s", t.Format("15:04:05"), level.CapitalString(), msg)
}
