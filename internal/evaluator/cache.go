package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a cached answer stays valid.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "ignite:answer:"

// Cache stores answers keyed by CacheKey.
type Cache interface {
	// Get returns the cached answer. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*Response, bool, error)
	Set(ctx context.Context, key string, resp *Response, ttl time.Duration) error
}

// CachingService is a decorator that serves repeated evaluations from a
// Cache. Cache failures are logged and never fail the call.
type CachingService struct {
	inner  Service
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// WithCache wraps a Service with an answer cache.
func WithCache(s Service, c Cache, ttl time.Duration, logger *zap.Logger) Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingService{inner: s, cache: c, ttl: ttl, logger: logger.Named("cache")}
}

func (c *CachingService) Evaluate(ctx context.Context, req Request) (*Response, error) {
	key := CacheKey(req)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	case ok:
		c.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil
	}

	resp, err := c.inner.Evaluate(ctx, req)
	if err != nil || resp.Text == "" {
		return resp, err
	}

	// A cached answer replays without status hints; no lookup happens on a hit.
	entry := &Response{Text: resp.Text}
	if err := c.cache.Set(ctx, key, entry, c.ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (c *CachingService) ChatHistory(ctx context.Context) ([]HistoryEntry, error) {
	return c.inner.ChatHistory(ctx)
}

func (c *CachingService) Summarize(ctx context.Context, history []HistoryEntry) (string, error) {
	return c.inner.Summarize(ctx, history)
}

func (c *CachingService) FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	return c.inner.FetchArtifact(ctx, name)
}

// CacheKey derives the cache key for req from its level and query. Queries
// differing only in case or whitespace share a key.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d\x00%s", req.Level, normalizeQuery(req.Query))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
