// Package cache is a thin JSON cache on top of Redis.
//
// The cache is strictly best-effort: when Redis is unreachable every call
// no-ops and callers fall through to the datastore. Catalog reads (products,
// categories) are the main consumers; their write paths invalidate by key
// prefix.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/pkg/metrics"
)

var rdb *redis.Client

// Connect initialises the Redis client and verifies the connection with a
// ping. On failure the cache stays disabled and all operations no-op.
func Connect(ctx context.Context) error {
	c := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	rdb = c
	return nil
}

// Enabled reports whether the cache is connected.
func Enabled() bool { return rdb != nil }

// Client exposes the underlying Redis client for other Redis consumers
// (e.g. the queue driver). Nil when the cache is disabled.
func Client() *redis.Client { return rdb }

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if rdb == nil {
		return false
	}

	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key for the given TTL.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	return rdb.Set(ctx, key, data, ttl).Err()
}

// Del removes one or more keys.
func Del(ctx context.Context, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// DelPrefix removes every key matching prefix* — used by catalog write
// paths to invalidate listing caches whose keys encode query params.
func DelPrefix(ctx context.Context, prefix string) error {
	if rdb == nil {
		return nil
	}

	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
