package cache

import (
	"context"
	"time"

	"github.com/yoapunto/yoapunto-server/cache/local"
	cacheredis "github.com/yoapunto/yoapunto-server/cache/redis"
	"github.com/yoapunto/yoapunto-server/config"
)

// Cache defines the KV operations used for token revocation and
// short-lived server-side state.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// New returns a Cache backed by Redis if RedisAddr is set,
// otherwise returns an in-process LocalCache.
func New(cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return local.NewCache(local.Config{
		GCInterval: cfg.LocalGCInterval,
	})
}
