// Package cache is a small JSON read-through cache on Redis. A nil *Cache is a valid,
// always-missing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyConfig            = "config:current"
	KeyPublicSpecialties = "specialties:public"
)

type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func New(rdb redis.UniversalClient, prefix string, logger *slog.Logger) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, prefix: prefix, logger: logger}
}

// Get decodes the cached value for key into dst. Redis errors count as a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache decode failed", "key", key, "err", err)
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "err", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.logger.Warn("cache delete failed", "keys", keys, "err", err)
	}
}

// ReadyCheck pings Redis.
func ReadyCheck(rdb redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
