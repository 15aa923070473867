// Package rediscache provides a short-TTL Redis cache for the synchronous
// count endpoints, keeping repeated polling of "how many questions still
// need an explanation" off the database.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/boardgen-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// defaultTTL is how long a cached count stays fresh. Counts drift as task
// bodies write descriptions, so keep this short.
const defaultTTL = 30 * time.Second

// CountCache caches integer counts under string keys.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCountCache creates a CountCache and verifies connectivity with a ping.
func NewCountCache(cfg config.StorageConfig, logger *slog.Logger) (*CountCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CountCache{
		client: client,
		ttl:    defaultTTL,
		logger: logger.With(slog.String("component", "count_cache")),
	}, nil
}

// Get returns the cached count for key and whether it was present.
// Cache errors are logged and reported as misses.
func (c *CountCache) Get(ctx context.Context, key string) (int, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return 0, false
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		c.logger.Warn("cache entry is not an integer", "key", key, "value", val)
		return 0, false
	}

	return count, true
}

// Set stores the count for key. Failures are logged, not returned; a
// missing cache entry only costs a recount.
func (c *CountCache) Set(ctx context.Context, key string, count int) {
	if err := c.client.Set(ctx, key, strconv.Itoa(count), c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close releases the underlying redis client.
func (c *CountCache) Close() error {
	return c.client.Close()
}
