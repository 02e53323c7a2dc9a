package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/meetingmind/logger"
)

// ErrDisabled is returned by New when redis.enabled is false.
var ErrDisabled = errors.New("redis is disabled")

// Client is a pooled connection with the few commands the result cache needs.
type Client struct {
	rdb    *goredis.Client
	log    *logger.Logger
	closed atomic.Bool
}

// New validates cfg and opens a pool. No connection is made until the
// first command; use Ping to check the server.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	opts := cfg.options()
	opts.TLSConfig = tlsCfg
	log.Debug("Redis pool created", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"pool_size", cfg.PoolSize,
		"tls", tlsCfg != nil,
	))
	return &Client{rdb: goredis.NewClient(opts), log: log}, nil
}

// IsAvailable is false once closed or when the server stops answering.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return !c.closed.Load() && c.Ping(ctx) == nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get reports found=false, without an error, for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return v, true, nil
}

// Set stores value for ttl; 0 keeps it until deleted.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the pool. Later calls are no-ops.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.log.Debug("Redis pool closed")
	return c.rdb.Close()
}
