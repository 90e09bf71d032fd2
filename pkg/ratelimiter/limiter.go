package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing RPC requests with a token bucket.
// A nil *RateLimiter never blocks, so callers can leave throttling off.
type RateLimiter struct {
	limiter *rate.Limiter
	burst   int
	rps     int
}

// New returns a limiter allowing rps requests per second with the given burst.
// It returns nil when rps <= 0, which disables throttling.
func New(rps, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		burst:   burst,
		rps:     rps,
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}

// TryAcquire attempts to acquire a token without blocking.
func (rl *RateLimiter) TryAcquire() bool {
	if rl == nil {
		return true
	}
	return rl.limiter.Allow()
}

// Stats returns the approximate available tokens, bucket size and token interval.
func (rl *RateLimiter) Stats() (available, capacity int, interval time.Duration) {
	if rl == nil {
		return 0, 0, 0
	}
	available = int(rl.limiter.Tokens())
	if available < 0 {
		available = 0
	}
	return available, rl.burst, time.Second / time.Duration(rl.rps)
}
