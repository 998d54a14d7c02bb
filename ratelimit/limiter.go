// Package ratelimit provides a token-bucket rate limiter backed by
// golang.org/x/time/rate for use as a shared gate on cache polling rounds.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket limiter that decides whether a polling
// round may proceed. A single Limiter is typically shared by every caller
// of one store so their combined polling pressure stays bounded.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter creates a Limiter that permits rps polling rounds per second
// with the given burst size.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a single round may proceed without waiting.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
