// Package ratelimit paces calls to the YouTube Data API.
//
// Two implementations share the Limiter interface:
//
// Fixed delay:
//   - Pauses a constant duration on every Wait
//   - Used after each description write, so mutations trickle out
//
// Token bucket:
//   - Backed by golang.org/x/time/rate
//   - Paces list and get calls at a per-minute rate with a small burst
//
// Both honour context cancellation, so an interrupted run stops waiting
// immediately.
//
// Usage:
//
//	writes := ratelimit.NewFixedDelay(time.Second)
//	reads := ratelimit.NewReadLimiter(300, 10)
//
//	if err := reads.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
