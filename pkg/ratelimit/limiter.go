package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow reports whether a call may proceed right now without waiting
	Allow() bool
	// Wait blocks until a call may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset restores the limiter to its initial state
	Reset()
}

// FixedDelay pauses for the same duration on every Wait
type FixedDelay struct {
	delay time.Duration
}

// NewFixedDelay creates a limiter that sleeps delay per call. A zero or
// negative delay never blocks.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Delay returns the configured pause
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Allow always reports true; the pause is imposed by Wait
func (f *FixedDelay) Allow() bool {
	return true
}

// Wait sleeps for the configured delay
func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Reset is a no-op for a stateless delay
func (f *FixedDelay) Reset() {}

// TokenBucket paces calls with a token bucket
type TokenBucket struct {
	limit rate.Limit
	burst int
	inner *rate.Limiter
}

// NewTokenBucket creates a limiter refilling every/interval with capacity burst
func NewTokenBucket(every time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Every(every)
	return &TokenBucket{
		limit: limit,
		burst: burst,
		inner: rate.NewLimiter(limit, burst),
	}
}

// NewReadLimiter creates a limiter allowing perMinute calls per minute.
// A non-positive perMinute disables pacing.
func NewReadLimiter(perMinute, burst int) Limiter {
	if perMinute <= 0 {
		return NewFixedDelay(0)
	}
	return NewTokenBucket(time.Minute/time.Duration(perMinute), burst)
}

// Allow consumes a token if one is available
func (tb *TokenBucket) Allow() bool {
	return tb.inner.Allow()
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.inner.Wait(ctx)
}

// Reset refills the bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.inner = rate.NewLimiter(tb.limit, tb.burst)
}
