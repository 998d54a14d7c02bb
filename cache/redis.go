package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnConfig describes how to reach the Redis store. Addr is required;
// everything else is optional. Cluster selects cluster-client topology —
// the rest of the access layer is identical for both.
type ConnConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Cluster  bool
}

func (c ConnConfig) validate() error {
	if c.Addr == "" {
		return errors.New("cache: store address is required")
	}
	return nil
}

// Conn owns a single live Redis session and exposes the Store primitives
// over it. Connect and Close are mutually exclusive; the data primitives
// rely on the go-redis client being safe for concurrent use.
type Conn struct {
	cfg ConnConfig
	log *slog.Logger

	mu  sync.Mutex
	rdb redis.UniversalClient
}

// NewConn validates cfg and returns an unconnected Conn. A missing address
// is a fatal configuration error reported here, before any network I/O.
func NewConn(cfg ConnConfig, log *slog.Logger) (*Conn, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Conn{cfg: cfg, log: log}, nil
}

// Connect establishes the session. Calling Connect on an already-connected
// Conn is a no-op that logs a warning instead of reconnecting, so racing
// startup paths cannot leak connections.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb != nil {
		c.log.Warn("cache connection already initialized", "addr", c.cfg.Addr)
		return nil
	}

	var rdb redis.UniversalClient
	if c.cfg.Cluster {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    []string{c.cfg.Addr},
			Username: c.cfg.Username,
			Password: c.cfg.Password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     c.cfg.Addr,
			Username: c.cfg.Username,
			Password: c.cfg.Password,
			DB:       c.cfg.DB,
		})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.rdb = rdb
	c.log.Info("cache connection established", "addr", c.cfg.Addr, "cluster", c.cfg.Cluster)
	return nil
}

// Close releases the session. Safe to call multiple times; after Close the
// data primitives return ErrNotInitialized.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	c.log.Info("cache connection closed", "addr", c.cfg.Addr)
	return err
}

// client returns the live session or ErrNotInitialized.
func (c *Conn) client() (redis.UniversalClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil, ErrNotInitialized
	}
	return c.rdb, nil
}

// wrap converts a transport-level error into ErrUnavailable so callers can
// treat every store failure uniformly.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Set stores value under key with no expiration.
func (c *Conn) Set(ctx context.Context, key, value string) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}
	return wrap(rdb.Set(ctx, key, value, 0).Err())
}

// SetIfAbsent stores value only when key has no entry. With ttl > 0 the
// write and its expiry are issued as a single SET NX EX command, so there
// is no window where the key exists without its TTL.
func (c *Conn) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	rdb, err := c.client()
	if err != nil {
		return false, err
	}
	if ttl <= 0 {
		ttl = 0
	}
	ok, err := rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, wrap(err)
	}
	return ok, nil
}

// Expire sets the time-to-live of an existing key.
func (c *Conn) Expire(ctx context.Context, key string, ttl time.Duration) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}
	return wrap(rdb.Expire(ctx, key, ttl).Err())
}

// Get retrieves the value under key. Returns ErrNotFound on a miss.
func (c *Conn) Get(ctx context.Context, key string) (string, error) {
	rdb, err := c.client()
	if err != nil {
		return "", err
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", wrap(err)
	}
	return val, nil
}

// TTL reports the remaining time-to-live of key: zero when the entry has
// no expiration, ErrNotFound when there is no entry.
func (c *Conn) TTL(ctx context.Context, key string) (time.Duration, error) {
	rdb, err := c.client()
	if err != nil {
		return 0, err
	}
	d, err := rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, wrap(err)
	}
	// go-redis passes the protocol sentinels through unscaled: -2 means no
	// such key, -1 means no expiry.
	switch d {
	case -2:
		return 0, ErrNotFound
	case -1:
		return 0, nil
	}
	return d, nil
}

// Del removes the key. Deleting a nonexistent key is not an error.
func (c *Conn) Del(ctx context.Context, key string) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}
	return wrap(rdb.Del(ctx, key).Err())
}

// Exists reports how many of the given key exist (0 or 1).
func (c *Conn) Exists(ctx context.Context, key string) (int64, error) {
	rdb, err := c.client()
	if err != nil {
		return 0, err
	}
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}
