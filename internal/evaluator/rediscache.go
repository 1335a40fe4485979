package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis string keys with expiry.
type RedisCache struct {
	rdb *goredis.Client
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, opts *goredis.Options) (*RedisCache, error) {
	if opts == nil || opts.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(rdb *goredis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

type cachedAnswer struct {
	Text string `json:"text"`
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Response, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry cachedAnswer
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cached answer: %w", err)
	}
	return &Response{Text: entry.Text}, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *Response, ttl time.Duration) error {
	raw, err := json.Marshal(cachedAnswer{Text: resp.Text})
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
