// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sobrazero/sobrazero-backend/internal/config"
)

// Cache is a thin JSON cache over redis for the public catalog listings.
// A nil *Cache is a valid no-op cache, so callers never branch on whether
// redis is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg config.RedisConfig, ttl time.Duration) *Cache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, catalog cache disabled")
		return nil
	}

	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// InvalidatePrefix drops every key under a prefix. Called on catalog writes.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logrus.WithError(err).Warn("Cache invalidation failed")
		}
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
