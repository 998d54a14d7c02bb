// Package gosquirrelstash provides a best-effort Redis cache client with
// TTL expiration, conditional writes, JSON object storage, and a
// backoff-polling retrieval mode for values written by concurrent
// producers. The behavioral pieces live in the cache subpackage; this
// package wires them together via functional [Option] values.
package gosquirrelstash

import (
	"context"
	"net/http"
	"time"

	"github.com/Keksclan/goSquirrelStash/cache"
	"github.com/Keksclan/goSquirrelStash/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client is the assembled cache access layer: a store connection plus the
// Stash built on top of it. Construct with [New], then call [Client.Connect]
// before issuing operations:
//
//	cl, err := gss.New(cache.ConnConfig{Addr: "localhost:6379"}, gss.DefaultOptions()...)
//	if err != nil { ... }
//	if err := cl.Connect(ctx); err != nil { ... }
//	defer cl.Close()
type Client struct {
	conn  *cache.Conn
	stash *cache.Stash
}

// New creates a Client by applying the supplied functional [Option] values
// and assembling the connection and access layer. It validates the store
// configuration but performs no network I/O; call [Client.Connect] next.
func New(connCfg cache.ConnConfig, opts ...Option) (*Client, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	conn, err := cache.NewConn(connCfg, cfg.logger)
	if err != nil {
		return nil, err
	}

	stashOpts := []cache.StashOption{cache.WithLogger(cfg.logger)}
	if cfg.nearEntries > 0 {
		near, err := cache.NewNear(cfg.nearEntries)
		if err != nil {
			return nil, err
		}
		stashOpts = append(stashOpts, cache.WithNear(near))
	}
	if cfg.pollRPS > 0 {
		stashOpts = append(stashOpts, cache.WithPollLimiter(ratelimit.NewLimiter(cfg.pollRPS, cfg.pollBurst)))
	}
	if cfg.backoffInitial > 0 || cfg.backoffMax > 0 {
		stashOpts = append(stashOpts, cache.WithBackoff(cfg.backoffInitial, cfg.backoffMax))
	}
	if cfg.tracing != nil {
		stashOpts = append(stashOpts, cache.WithTracing(cfg.tracing))
	}

	return &Client{
		conn:  conn,
		stash: cache.NewStash(conn, stashOpts...),
	}, nil
}

// Connect establishes the store session. Idempotent; a second call logs a
// warning and returns nil.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Stash returns the underlying access layer, for callers that need the
// generic [cache.Fetch] / [cache.FetchWait] helpers.
func (c *Client) Stash() *cache.Stash {
	return c.stash
}

// Save stores a string value with an optional TTL (clamped to at least one
// second when positive).
func (c *Client) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.stash.Save(ctx, key, value, ttl)
}

// SaveObject stores obj as JSON with an optional TTL.
func (c *Client) SaveObject(ctx context.Context, key string, obj any, ttl time.Duration) error {
	return c.stash.SaveObject(ctx, key, obj, ttl)
}

// SaveIfAbsent writes value only when key has no entry, reporting whether
// the write took place.
func (c *Client) SaveIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.stash.SaveIfAbsent(ctx, key, value, ttl)
}

// Get retrieves the value under key with a single attempt.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	return c.stash.Get(ctx, key)
}

// GetWait retrieves the value under key, polling with backoff for up to
// timeout when it is not yet present.
func (c *Client) GetWait(ctx context.Context, key string, timeout time.Duration) (string, bool, error) {
	return c.stash.GetWait(ctx, key, timeout)
}

// Delete removes the key (best-effort).
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.stash.Delete(ctx, key)
}

// Exists reports whether the key currently has an entry.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	return c.stash.Exists(ctx, key)
}

// Close releases the store session. Safe to call multiple times.
func (c *Client) Close() error {
	return c.conn.Close()
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func (c *Client) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
