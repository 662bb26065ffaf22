package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aagaur/studiocms/config"
)

var (
	redisClient *redis.Client
	redisMu     sync.RWMutex
)

// InitRedis connects to Redis when it is enabled. A failed ping leaves
// the client unset so callers fall back to their in-memory paths.
func InitRedis(cfg config.AppConfig) *redis.Client {
	if !cfg.RedisEnabled {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis unavailable at %s, continuing without it: %v", rc.Options().Addr, err)
		_ = rc.Close()
		return nil
	}
	SetRedis(rc)
	return rc
}

// SetRedis replaces the shared client. Tests use it with miniature servers or nil.
func SetRedis(rc *redis.Client) {
	redisMu.Lock()
	redisClient = rc
	redisMu.Unlock()
}

// GetRedis returns the shared client, or nil when Redis is not in use.
func GetRedis() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}
