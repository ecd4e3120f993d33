// Package cache wraps the shared Redis result cache. The cache is a
// performance layer, never a reliability dependency: every failed cache
// operation degrades to a miss and the request falls through to the database.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lol-dashboard/internal/config"
	"lol-dashboard/internal/metrics"
)

type Cache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// New connects to Redis when REDIS_ADDR is configured. Without it the cache
// runs disabled: every read misses, every write is a no-op.
func New(cfg *config.Config, logger zerolog.Logger) *Cache {
	if cfg.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, running without result cache")
		return &Cache{logger: logger}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache will degrade to always-miss")
	} else {
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}

	return &Cache{rdb: rdb, logger: logger}
}

// Get reads and decodes a cached value into dest. Returns false on miss or
// on any cache-layer failure.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c.rdb == nil {
		metrics.CacheMisses.Inc()
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			metrics.CacheErrors.Inc()
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheErrors.Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		metrics.CacheMisses.Inc()
		return false
	}

	metrics.CacheHits.Inc()
	return true
}

// Set stores a value with a TTL. Failures are logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache value")
		return
	}

	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		metrics.CacheErrors.Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		metrics.CacheErrors.Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// DeletePattern removes all keys matching a glob, e.g. "dashboard:teams:*".
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if c.rdb == nil {
		return
	}

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		metrics.CacheErrors.Inc()
		c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		metrics.CacheErrors.Inc()
		c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache pattern delete failed")
		return
	}
	c.logger.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("cache entries invalidated")
}

// GetOrSet returns the cached value for key, or computes it with fetch and
// stores it. Concurrent callers with the same key may race to populate it;
// recomputation is always safe, so no single-flight guard is held.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}
