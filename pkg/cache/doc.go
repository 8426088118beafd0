// Package cache provides a generic, thread-safe in-memory TTL cache for
// short-lived values such as out-of-band verification codes.
//
// Entries expire individually after their time-to-live and are purged lazily
// on access, so the cache requires no background goroutine and is safe to use
// from any number of concurrent request handlers.
//
// # Usage
//
//	c := cache.NewTTLCache[string, string]()
//	c.Set("challenge:42", "123456", 5*time.Minute)
//
//	code, ok := c.Get("challenge:42")
//	if ok {
//		// code is still live
//	}
//
// # Deterministic time in tests
//
// The time source is injectable, letting tests advance the clock instead of
// sleeping:
//
//	now := time.Unix(1700000000, 0)
//	c := cache.NewTTLCache[string, string](
//		cache.WithClock[string, string](func() time.Time { return now }),
//	)
//
// All operations are O(1) except Len, which sweeps expired entries.
package cache
