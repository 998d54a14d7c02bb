package cache

import "time"

// Default polling schedule: start at 50 ms and double each round, never
// exceeding 500 ms between attempts.
const (
	DefaultInitialWait = 50 * time.Millisecond
	DefaultMaxWait     = 500 * time.Millisecond
)

// nextWait returns the delay for the round after one that waited cur,
// doubling up to the ceiling.
func nextWait(cur, ceiling time.Duration) time.Duration {
	next := cur * 2
	if next > ceiling {
		next = ceiling
	}
	return next
}
