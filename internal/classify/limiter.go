package classify

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces provider calls to a minimum interval, shared across all
// in-flight pipeline workers.
type RateLimiter struct {
	minInterval time.Duration
	mu          sync.Mutex
	last        time.Time
}

// NewRateLimiter builds a limiter allowing requestsPerMinute calls.
// Non-positive values disable limiting.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{minInterval: time.Minute / time.Duration(requestsPerMinute)}
}

// Wait blocks until the next call slot opens or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.minInterval == 0 {
		return ctx.Err()
	}

	r.mu.Lock()
	now := time.Now()
	next := r.last.Add(r.minInterval)
	if next.Before(now) {
		next = now
	}
	r.last = next
	r.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
