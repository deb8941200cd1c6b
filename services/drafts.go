package services

import (
	"sync"
	"time"
)

// Draft is the submission id assets are uploaded under before the vendor
// submits.
type Draft struct {
	SubmissionID string `json:"submission_id"`
	Vendor       string `json:"vendor"`
}

// Drafts tracks the active draft and the last final submission per login
// session.
type Drafts struct {
	mu      sync.Mutex
	active  map[string]Draft
	last    map[string]Draft
	touched map[string]time.Time
	now     func() time.Time
}

func NewDrafts() *Drafts {
	return &Drafts{
		active:  make(map[string]Draft),
		last:    make(map[string]Draft),
		touched: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Active returns the session's draft, issuing one on first use.
func (d *Drafts) Active(sessionID, vendor string) Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.touched[sessionID] = now
	if dr, ok := d.active[sessionID]; ok {
		return dr
	}
	dr := Draft{SubmissionID: SubmissionID(now), Vendor: vendor}
	d.active[sessionID] = dr
	return dr
}

// Finish ends the active draft and records the final submission. The draft
// id that was active is returned, empty if none was issued. A new draft is
// issued on the next Active call.
func (d *Drafts) Finish(sessionID string, final Draft) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.active[sessionID].SubmissionID
	delete(d.active, sessionID)
	d.last[sessionID] = final
	d.touched[sessionID] = d.now()
	return prev
}

// Last returns the session's last final submission.
func (d *Drafts) Last(sessionID string) (Draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.last[sessionID]
	return dr, ok
}

// Forget drops everything kept for a session.
func (d *Drafts) Forget(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, sessionID)
	delete(d.last, sessionID)
	delete(d.touched, sessionID)
}

// Prune forgets sessions untouched for longer than maxAge and returns how
// many were dropped.
func (d *Drafts) Prune(maxAge time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	cutoff := d.now().Add(-maxAge)
	n := 0
	for id, t := range d.touched {
		if t.Before(cutoff) {
			delete(d.active, id)
			delete(d.last, id)
			delete(d.touched, id)
			n++
		}
	}
	return n
}
