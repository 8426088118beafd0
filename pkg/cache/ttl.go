package cache

import (
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe in-memory cache whose entries expire after a
// per-entry time-to-live. Expired entries are purged lazily on access, so the
// cache needs no background goroutine.
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]ttlEntry[V]
	now   func() time.Time
}

// TTLOption configures a TTLCache.
type TTLOption[K comparable, V any] func(*TTLCache[K, V])

// WithClock overrides the cache's time source. Tests use it to advance time
// deterministically instead of sleeping.
func WithClock[K comparable, V any](now func() time.Time) TTLOption[K, V] {
	return func(c *TTLCache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTTLCache creates an empty TTL cache.
func NewTTLCache[K comparable, V any](opts ...TTLOption[K, V]) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		items: make(map[K]ttlEntry[V]),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores a value under key, replacing any previous value, expiring after ttl.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Get retrieves the value for key. Returns the zero value and false when the
// key is absent or its TTL has elapsed; elapsed entries are removed.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Delete removes the entry for key, reporting whether a live entry existed.
func (c *TTLCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	delete(c.items, key)
	return c.now().Before(entry.expiresAt)
}

// Len reports the number of live entries, sweeping out expired ones.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.items {
		if !now.Before(entry.expiresAt) {
			delete(c.items, key)
		}
	}
	return len(c.items)
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]ttlEntry[V])
}
