// Package cache provides a best-effort access layer over a remote Redis
// store: string and JSON-object save/get/delete/exists with TTL expiration,
// plus a backoff-polling retrieval mode that waits for a value a concurrent
// producer may write shortly after the request is issued.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Store.Get when no entry exists under the
	// key. It should be checked using errors.Is().
	ErrNotFound = errors.New("cache: key not found")

	// ErrNotInitialized is returned when an operation is attempted before
	// Connect succeeded or after Close. It signals a programming error, not
	// a runtime condition, and is the only error class that [Stash]
	// propagates to callers.
	ErrNotInitialized = errors.New("cache: connection not initialized")

	// ErrUnavailable wraps transport-level failures (timeouts, resets,
	// protocol errors). The Stash contains it; callers of Stash never see it.
	ErrUnavailable = errors.New("cache: store unavailable")
)

// Store is the narrow primitive interface the access layer is written
// against. Conn implements it over Redis; tests implement it in memory.
type Store interface {
	// Set stores value under key with no expiration.
	Set(ctx context.Context, key, value string) error

	// SetIfAbsent stores value under key only when no entry exists. When
	// ttl > 0 the write and the expiry are applied as one atomic operation.
	// The boolean reports whether the write took place.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Expire sets the time-to-live of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Get retrieves the value under key. Returns ErrNotFound on a miss.
	Get(ctx context.Context, key string) (string, error)

	// TTL reports the remaining time-to-live of key: zero when the entry
	// has no expiration, ErrNotFound when there is no entry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Del removes the key. Deleting a nonexistent key is not an error.
	Del(ctx context.Context, key string) error

	// Exists reports how many of the given key exist (0 or 1).
	Exists(ctx context.Context, key string) (int64, error)
}
