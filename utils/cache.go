package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = time.Hour

// Cache is a Redis-backed read-through cache for list responses.
// A nil *Cache or one without a client is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps rc. ttl <= 0 uses one hour.
func NewCache(rc *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: rc, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// GetBytes returns cached bytes for key.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("cache get key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// SetJSON stores v marshalled as JSON.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// InvalidateByPrefix deletes keys matching prefix using SCAN.
func (c *Cache) InvalidateByPrefix(ctx context.Context, prefix string) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			Sugar.Warnf("cache invalidate prefix=%s err=%v", prefix, err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				Sugar.Warnf("cache delete prefix=%s err=%v", prefix, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
