package oob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mfa:oob:"

// RedisCache is a CodeCache backed by Redis, for deployments where a code
// issued on one node must verify on another. Records are stored as JSON under
// a namespaced key with Redis-native TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed CodeCache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: redisKeyPrefix}
}

func (r *RedisCache) Set(ctx context.Context, key string, record CodeRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode code record: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code record: %w", err)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (CodeRecord, bool, error) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return CodeRecord{}, false, nil
		}
		return CodeRecord{}, false, fmt.Errorf("failed to load code record: %w", err)
	}

	var record CodeRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return CodeRecord{}, false, fmt.Errorf("failed to decode code record: %w", err)
	}
	return record, true, nil
}

// Delete reports whether this call removed the entry via DEL's removed-key
// count, so racing consumers of the same code resolve to one winner inside
// Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete code record: %w", err)
	}
	return removed == 1, nil
}
