// Package logger is the portal's structured logger on zap. Lines can also be
// mirrored into a Ring that feeds the live log stream.
package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	vendorKey
	submissionKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithVendor(ctx context.Context, vendor string) context.Context {
	return context.WithValue(ctx, vendorKey, vendor)
}

func WithSubmission(ctx context.Context, submissionID string) context.Context {
	return context.WithValue(ctx, submissionKey, submissionID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger builds a JSON logger on stdout at the given level. When ring is
// not nil every written entry is also added to it.
func NewZapLogger(level string, ring *Ring) (Logger, error) {
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var opts []zap.Option
	if ring != nil {
		opts = append(opts, zap.Hooks(ring.hook))
	}
	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLogger{logger: l}, nil
}

// New wraps an existing zap logger.
func New(l *zap.Logger) Logger {
	return &ZapLogger{logger: l}
}

// Nop discards everything.
func Nop() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) fields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v, ok := ctx.Value(vendorKey).(string); ok && v != "" {
		fields = append(fields, zap.String("vendor", v))
	}
	if v, ok := ctx.Value(submissionKey).(string); ok && v != "" {
		fields = append(fields, zap.String("submission_id", v))
	}
	return fields
}

func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), l.fields(ctx)...)
}

func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), l.fields(ctx)...)
}

func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), l.fields(ctx)...)
}

func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), l.fields(ctx)...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
