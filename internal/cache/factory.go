package cache

import (
	"context"
	"time"

	"carwash/internal/config"

	"go.uber.org/zap"
)

const redisConnectTimeout = 3 * time.Second

// ForConfig returns the Redis cache when it is enabled and answers a ping,
// otherwise an in-process cache.
func ForConfig(ctx context.Context, rc config.RedisConfig, ttl time.Duration, log *zap.Logger) PermissionCache {
	if rc.Enabled {
		pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		client, err := NewRedisClient(pingCtx, rc.Addr, rc.Password, rc.DB)
		if err == nil {
			log.Info("permission cache: redis", zap.String("addr", rc.Addr))
			return NewRedisPermissionCache(client, ttl)
		}
		log.Warn("redis unavailable, using in-memory permission cache", zap.Error(err))
	}
	return NewMemoryPermissionCache(ttl)
}
