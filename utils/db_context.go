package utils

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds ordinary store calls.
const DefaultQueryTimeout = 30 * time.Second

// FastQueryTimeout is for single row lookups and deletes.
const FastQueryTimeout = 10 * time.Second

// GetQueryContext returns a context with timeout. A nil parent falls back to
// context.Background.
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultQueryTimeout)
}

func GetFastQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, FastQueryTimeout)
}
