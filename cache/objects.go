package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Fetch retrieves the JSON value under key and decodes it into T with a
// single attempt. A malformed cached value is treated like a missing one:
// the decode failure is logged and the result is absent.
func Fetch[T any](ctx context.Context, s *Stash, key string) (T, bool, error) {
	return FetchWait[T](ctx, s, key, 0)
}

// FetchWait retrieves the JSON value under key with backoff polling (see
// [Stash.GetWait]) and decodes it into T.
func FetchWait[T any](ctx context.Context, s *Stash, key string, timeout time.Duration) (T, bool, error) {
	var out T
	raw, ok, err := s.GetWait(ctx, key, timeout)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Error("decoding cached value failed", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}
