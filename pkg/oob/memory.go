package oob

import (
	"context"
	"time"

	"github.com/clinova/mfacore/pkg/cache"
)

// MemoryCache is a CodeCache backed by the in-process TTL cache. Suitable for
// tests and single-node deployments; multi-node deployments should use
// RedisCache so a code issued on one node verifies on another.
type MemoryCache struct {
	cache *cache.TTLCache[string, CodeRecord]
}

// MemoryCacheOption configures a MemoryCache.
type MemoryCacheOption func(*memoryCacheConfig)

type memoryCacheConfig struct {
	now func() time.Time
}

// WithMemoryClock overrides the underlying cache's time source for tests.
func WithMemoryClock(now func() time.Time) MemoryCacheOption {
	return func(c *memoryCacheConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an in-process CodeCache.
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	cfg := memoryCacheConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryCache{
		cache: cache.NewTTLCache[string, CodeRecord](
			cache.WithClock[string, CodeRecord](cfg.now),
		),
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, record CodeRecord, ttl time.Duration) error {
	m.cache.Set(key, record, ttl)
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (CodeRecord, bool, error) {
	record, ok := m.cache.Get(key)
	return record, ok, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	return m.cache.Delete(key), nil
}
