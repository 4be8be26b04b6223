package repository

import (
	"context"
	"time"
)

// StoreObserver receives per-operation store query timings.
type StoreObserver interface {
	ObserveStoreQuery(operation string, duration time.Duration)
}

// store carries the query timeout and observer shared by the repositories.
// A zero timeout leaves the caller's context untouched; a nil observer
// drops the timings.
type store struct {
	timeout  time.Duration
	observer StoreObserver
}

// opContext bounds one store operation with the configured query timeout.
// The returned cancel func must always be called.
func (s store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// observe reports the elapsed time of the named operation. Meant to be
// deferred with the start time captured at the call site:
//
//	defer r.observe("users.findByEmail", time.Now())
func (s store) observe(operation string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveStoreQuery(operation, time.Since(start))
	}
}
