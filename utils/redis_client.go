package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/mdblog/config"
)

// NewRedisClient connects to the configured Redis. It returns nil when no
// host is configured or the server does not answer, and the page cache then
// stays disabled.
func NewRedisClient(cfg config.AppConfig) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		Sugar.Warnw("redis unavailable, continuing without page cache", "addr", addr, "err", err)
		_ = rc.Close()
		return nil
	}
	Sugar.Infow("redis page cache enabled", "addr", addr)
	return rc
}
