package utils

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageCachePrefix = "cache:page:"
	defaultCacheTTL = time.Hour
	// Outside pageCachePrefix so Flush bumps it rather than deleting it.
	indexGenKey = "cache:gen:index"
)

var errStaleGeneration = errors.New("cache generation changed")

// PageCache stores rendered HTML pages in Redis. A nil *PageCache, or one
// without a client, is a no-op, so callers never need to check.
type PageCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewPageCache wraps rc. rc may be nil.
func NewPageCache(rc *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &PageCache{rc: rc, ttl: ttl}
}

// IndexKey is the cache key for the rendered listing.
func IndexKey() string { return pageCachePrefix + "index" }

// PostKey is the cache key for a rendered post page.
func PostKey(id string) string { return pageCachePrefix + "post:" + id }

func (c *PageCache) enabled() bool {
	return c != nil && c.rc != nil
}

// Get returns cached bytes for a key.
func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			Sugar.Warnw("cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

// Set stores b under key with the cache TTL. Failures are logged only.
func (c *PageCache) Set(ctx context.Context, key string, b []byte) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, c.ttl).Err(); err != nil {
		Sugar.Warnw("cache set failed", "key", key, "err", err)
	}
}

// IndexGeneration returns the current index generation. Read it before
// building an index page and pass it to SetIndex.
func (c *PageCache) IndexGeneration(ctx context.Context) int64 {
	if !c.enabled() {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	gen, err := c.rc.Get(ctx, indexGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		Sugar.Warnw("cache generation read failed", "err", err)
		return -1
	}
	return gen
}

// SetIndex caches the rendered index only while the generation is still gen.
// A page built from a scan that raced with InvalidateIndex is dropped.
func (c *PageCache) SetIndex(ctx context.Context, page []byte, gen int64) bool {
	if !c.enabled() || gen < 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := c.rc.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, indexGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, IndexKey(), page, c.ttl)
			return nil
		})
		return err
	}, indexGenKey)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		Sugar.Debugw("cache index set skipped", "gen", gen)
	default:
		Sugar.Warnw("cache index set failed", "err", err)
	}
	return false
}

// InvalidateIndex bumps the index generation and drops the cached index.
func (c *PageCache) InvalidateIndex(ctx context.Context) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	pipe := c.rc.TxPipeline()
	pipe.Incr(ctx, indexGenKey)
	pipe.Del(ctx, IndexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		Sugar.Warnw("cache index invalidate failed", "err", err)
	}
}

// Invalidate deletes the given keys.
func (c *PageCache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		Sugar.Warnw("cache invalidate failed", "keys", keys, "err", err)
	}
}

// Flush deletes every cached page using SCAN and bumps the index generation.
func (c *PageCache) Flush(ctx context.Context) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.rc.Incr(ctx, indexGenKey).Err(); err != nil {
		Sugar.Warnw("cache generation bump failed", "err", err)
	}
	var cursor uint64
	for {
		keys, cur, err := c.rc.Scan(ctx, cursor, pageCachePrefix+"*", 1000).Result()
		if err != nil {
			Sugar.Warnw("cache flush failed", "err", err)
			return
		}
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		cursor = cur
		if cursor == 0 {
			return
		}
	}
}
