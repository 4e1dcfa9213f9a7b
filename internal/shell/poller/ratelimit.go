// Package poller refreshes the status of several deployments at once for
// dashboard consumers: a bounded worker pool fans out checks, a client-side
// rate limiter keeps the provider API happy, and a short-TTL cache absorbs
// redundant refreshes. Network I/O here stays off any rendering path.
package poller

import (
	"context"
	"sync"
	"time"
)

// RateLimiter admits a fixed number of calls per rolling window. It is not a
// token bucket: the budget is exactly "N calls in any 60-second span",
// matching the provider's published limit.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewRateLimiter creates a limiter admitting callsPerMinute calls per rolling
// 60-second window. Values below 1 are clamped to 1.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute < 1 {
		callsPerMinute = 1
	}
	return &RateLimiter{
		limit:  callsPerMinute,
		window: time.Minute,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Wait blocks until a call slot is free, then records the call. It returns
// early with the context's error on cancellation.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		r.prune(now)
		if len(r.calls) < r.limit {
			r.calls = append(r.calls, now)
			r.mu.Unlock()
			return nil
		}
		wait := r.window - now.Sub(r.calls[0])
		r.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// prune drops call records older than the window. Callers hold mu.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.calls[:0]
	for _, t := range r.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.calls = kept
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
