package core

// import_limiter.go bounds how many document extractions run at once.
//
// Each extraction holds a slot for the duration of the AI call. Callers that
// cannot get a slot within the configured wait receive ErrTooManyImports and
// the store stays untouched.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up in time.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// Defaults used when the configured values are not positive.
const (
	DefaultMaxConcurrentImports = 5
	DefaultMaxWaitTime          = 30 * time.Second
)

// ImportLimiter is a counting semaphore with a bounded wait.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows at most maxConcurrent imports; a caller waits at
// most maxWait for a slot.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the configured limit. A cancelled ctx
// returns ctx.Err(); an expired wait returns ErrTooManyImports. Every
// successful Acquire must be paired with Release.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyImports
	}
}

// Release returns a slot taken by Acquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of slots in use.
func (l *ImportLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// Available returns the number of free slots.
func (l *ImportLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// ImportLimiterStatus is a point-in-time view of the limiter.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports the current slot usage.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	return ImportLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
