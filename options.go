package gosquirrelstash

import (
	"log/slog"
	"time"

	"github.com/Keksclan/goSquirrelStash/tracing"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	logger         *slog.Logger
	nearEntries    int64
	backoffInitial time.Duration
	backoffMax     time.Duration
	pollRPS        float64
	pollBurst      int
	tracing        *tracing.Config
}

// Option configures a Client.
type Option func(*config)

// WithLogger sets the logger used for contained store and serialization
// failures. Without it the client logs nothing.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		c.logger = log
	}
}

// WithNearCache places an in-process near cache (holding up to maxEntries
// values) in front of the store read path. Values written or read by this
// process are then re-readable without a store round trip.
func WithNearCache(maxEntries int64) Option {
	return func(c *config) {
		c.nearEntries = maxEntries
	}
}

// WithBackoff overrides the polling schedule used by GetWait. Non-positive
// values keep the defaults (50 ms initial wait, 500 ms cap).
func WithBackoff(initial, max time.Duration) Option {
	return func(c *config) {
		c.backoffInitial = initial
		c.backoffMax = max
	}
}

// WithPollLimit bounds the aggregate polling pressure of all concurrent
// GetWait callers to rps rounds per second (with the given burst).
func WithPollLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.pollRPS = rps
		c.pollBurst = burst
	}
}

// WithTracing enables an OpenTelemetry span per cache operation.
func WithTracing(cfg *tracing.Config) Option {
	return func(c *config) {
		c.tracing = cfg
	}
}
