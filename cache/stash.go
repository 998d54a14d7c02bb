package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/Keksclan/goSquirrelStash/ratelimit"
	"github.com/Keksclan/goSquirrelStash/tracing"
)

// ttlFloor is the minimum effective expiration. Positive TTLs below it are
// clamped up before reaching the store, so a rounding mistake or a caller
// passing 5 (milliseconds, not seconds) cannot create a near-instantly
// expiring entry.
const ttlFloor = time.Second

// Stash is the cache access layer. All data operations are best-effort:
// store failures are logged and contained, and callers observe only an
// absent value (or false). The single exception is ErrNotInitialized,
// which is propagated because it indicates a programming error.
//
// A Stash is safe for concurrent use. The only blocking point is the
// backoff sleep inside [Stash.GetWait], which suspends just the calling
// goroutine.
type Stash struct {
	store   Store
	log     *slog.Logger
	near    *Near
	limiter *ratelimit.Limiter
	trace   *tracing.Config

	initialWait time.Duration
	maxWait     time.Duration
}

// StashOption configures a Stash.
type StashOption func(*Stash)

// WithLogger sets the logger used for contained failures. A nil logger
// degrades to a no-op.
func WithLogger(log *slog.Logger) StashOption {
	return func(s *Stash) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNear places a near cache in front of the store for the zero-wait
// read path.
func WithNear(n *Near) StashOption {
	return func(s *Stash) { s.near = n }
}

// WithPollLimiter gates every polling round after the first behind a
// shared token bucket, bounding aggregate GET pressure when many callers
// wait concurrently.
func WithPollLimiter(l *ratelimit.Limiter) StashOption {
	return func(s *Stash) { s.limiter = l }
}

// WithTracing enables an OpenTelemetry span per public operation.
func WithTracing(cfg *tracing.Config) StashOption {
	return func(s *Stash) { s.trace = cfg }
}

// WithBackoff overrides the polling schedule. Non-positive values keep the
// defaults (50 ms initial, 500 ms cap).
func WithBackoff(initial, max time.Duration) StashOption {
	return func(s *Stash) {
		if initial > 0 {
			s.initialWait = initial
		}
		if max > 0 {
			s.maxWait = max
		}
	}
}

// NewStash creates an access layer over store.
func NewStash(store Store, opts ...StashOption) *Stash {
	s := &Stash{
		store:       store,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		initialWait: DefaultInitialWait,
		maxWait:     DefaultMaxWait,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// isNilObject reports whether obj is nil, including a typed nil (a nil
// pointer, map or slice boxed in a non-nil interface), which would
// otherwise marshal to the literal "null".
func isNilObject(obj any) bool {
	if obj == nil {
		return true
	}
	switch v := reflect.ValueOf(obj); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// clampTTL normalizes a caller-supplied TTL: non-positive means no
// expiration, and positive values below the floor are raised to it.
func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if ttl < ttlFloor {
		return ttlFloor
	}
	return ttl
}

// Save stores value under key. A positive ttl (clamped to at least one
// second) is applied with a separate EXPIRE call after the SET; the two are
// not atomic, so a failure between them leaves the key without a TTL. That
// gap is inherent to this operation — use [Stash.SaveIfAbsent] when the
// write and its expiry must land together.
func (s *Stash) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, span := s.startSpan(ctx, "save", key)
	ttl = clampTTL(ttl)

	err := s.store.Set(ctx, key, value)
	if err != nil {
		s.endSpan(span, false, err)
		if errors.Is(err, ErrNotInitialized) {
			return err
		}
		s.log.Error("saving key failed", "key", key, "error", err)
		storeErrors.WithLabelValues("save").Inc()
		return nil
	}

	if ttl > 0 {
		if err := s.store.Expire(ctx, key, ttl); err != nil {
			s.log.Error("setting key expiry failed", "key", key, "error", err)
			storeErrors.WithLabelValues("save").Inc()
		}
	}

	if s.near != nil {
		s.near.set(key, value, ttl)
	}
	s.endSpan(span, true, nil)
	return nil
}

// SaveObject serializes obj to JSON and stores it under key via
// [Stash.Save]. A nil obj is rejected without touching the store, and a
// marshal failure is logged and swallowed — in both cases nothing is
// written.
func (s *Stash) SaveObject(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if isNilObject(obj) {
		s.log.Error("refusing to save nil object", "key", key)
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		s.log.Error("serializing object failed", "key", key, "error", err)
		return nil
	}
	return s.Save(ctx, key, string(data), ttl)
}

// SaveIfAbsent writes value under key only when no entry exists, returning
// whether the write took place. With a positive ttl (clamped like Save) the
// write and expiry are issued as one atomic conditional operation. False
// means either the key already existed or the store call failed; the two
// are distinguished only through the log.
func (s *Stash) SaveIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ctx, span := s.startSpan(ctx, "save_if_absent", key)
	ttl = clampTTL(ttl)

	ok, err := s.store.SetIfAbsent(ctx, key, value, ttl)
	if err != nil {
		s.endSpan(span, false, err)
		if errors.Is(err, ErrNotInitialized) {
			return false, err
		}
		s.log.Error("conditional save failed", "key", key, "error", err)
		storeErrors.WithLabelValues("save_if_absent").Inc()
		return false, nil
	}

	if ok && s.near != nil {
		s.near.set(key, value, ttl)
	}
	s.endSpan(span, ok, nil)
	return ok, nil
}

// Get retrieves the string value under key with a single attempt. It never
// sleeps; a missing key yields ("", false, nil) immediately.
func (s *Stash) Get(ctx context.Context, key string) (string, bool, error) {
	return s.GetWait(ctx, key, 0)
}

// GetWait retrieves the string value under key, polling with backoff for
// up to timeout when the key is not yet present. The first attempt is
// issued immediately; after a miss the goroutine sleeps (50 ms, doubling
// per round, capped at 500 ms) and retries until the elapsed time reaches
// timeout. A non-positive timeout means exactly one attempt.
//
// The deadline is checked between rounds, so the total wait can overshoot
// timeout by up to one backoff interval. Cancelling ctx during a sleep
// aborts the poll immediately with an absent result.
func (s *Stash) GetWait(ctx context.Context, key string, timeout time.Duration) (string, bool, error) {
	ctx, span := s.startSpan(ctx, "get", key)
	start := time.Now()

	if s.near != nil {
		if val, ok := s.near.get(key); ok {
			hits.Inc()
			pollRounds.Observe(1)
			waitSeconds.Observe(time.Since(start).Seconds())
			s.endSpan(span, true, nil)
			return val, true, nil
		}
	}

	wait := s.initialWait
	rounds := 0

	for {
		rounds++
		val, err := s.store.Get(ctx, key)
		if err == nil {
			if s.near != nil {
				// The near copy mirrors the store's remaining TTL so it
				// cannot outlive the authoritative entry. If the entry
				// vanished in between, skip the promotion.
				if rem, terr := s.store.TTL(ctx, key); terr == nil {
					s.near.set(key, val, rem)
				}
			}
			hits.Inc()
			pollRounds.Observe(float64(rounds))
			waitSeconds.Observe(time.Since(start).Seconds())
			s.endSpan(span, true, nil)
			return val, true, nil
		}
		if errors.Is(err, ErrNotInitialized) {
			s.endSpan(span, false, err)
			return "", false, err
		}
		if !errors.Is(err, ErrNotFound) {
			// A store that is down will not come back within one polling
			// window; abort instead of burning the timeout against it.
			s.log.Error("retrieving key failed", "key", key, "error", err)
			storeErrors.WithLabelValues("get").Inc()
			s.endSpan(span, false, err)
			return "", false, nil
		}

		if timeout <= 0 || time.Since(start) >= timeout {
			misses.Inc()
			pollRounds.Observe(float64(rounds))
			waitSeconds.Observe(time.Since(start).Seconds())
			s.endSpan(span, false, nil)
			return "", false, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Warn("backoff wait cancelled", "key", key, "cause", ctx.Err())
			misses.Inc()
			s.endSpan(span, false, nil)
			return "", false, nil
		case <-timer.C:
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.log.Warn("backoff wait cancelled", "key", key, "cause", err)
				misses.Inc()
				s.endSpan(span, false, nil)
				return "", false, nil
			}
		}

		wait = nextWait(wait, s.maxWait)
	}
}

// Delete removes the key. Best-effort: store failures are logged and
// swallowed, since a delete is idempotent and a later retry has the same
// effect.
func (s *Stash) Delete(ctx context.Context, key string) error {
	ctx, span := s.startSpan(ctx, "delete", key)
	if s.near != nil {
		s.near.del(key)
	}
	err := s.store.Del(ctx, key)
	if err != nil {
		s.endSpan(span, false, err)
		if errors.Is(err, ErrNotInitialized) {
			return err
		}
		s.log.Error("deleting key failed", "key", key, "error", err)
		storeErrors.WithLabelValues("delete").Inc()
		return nil
	}
	s.endSpan(span, true, nil)
	return nil
}

// Exists reports whether the key currently has an entry. Absence is the
// safe default: a store failure yields false. The near cache is never
// consulted — existence must reflect the store.
func (s *Stash) Exists(ctx context.Context, key string) (bool, error) {
	ctx, span := s.startSpan(ctx, "exists", key)
	n, err := s.store.Exists(ctx, key)
	if err != nil {
		s.endSpan(span, false, err)
		if errors.Is(err, ErrNotInitialized) {
			return false, err
		}
		s.log.Error("checking key existence failed", "key", key, "error", err)
		storeErrors.WithLabelValues("exists").Inc()
		return false, nil
	}
	s.endSpan(span, n > 0, nil)
	return n > 0, nil
}

// Close releases the underlying store session when the Stash owns a
// closable one.
func (s *Stash) Close() error {
	if c, ok := s.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *Stash) startSpan(ctx context.Context, op, key string) (context.Context, tracing.Span) {
	if s.trace == nil {
		return ctx, tracing.Span{}
	}
	return s.trace.Start(ctx, op, key)
}

func (s *Stash) endSpan(span tracing.Span, hit bool, err error) {
	if s.trace == nil {
		return
	}
	span.End(hit, err)
}
