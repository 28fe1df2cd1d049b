package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const permKeyPrefix = "carwash:perms:"

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisPermissionCache shares role permission sets across API instances.
type RedisPermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPermissionCache(client *redis.Client, ttl time.Duration) *RedisPermissionCache {
	return &RedisPermissionCache{client: client, ttl: ttl}
}

func (c *RedisPermissionCache) Get(ctx context.Context, role string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, permKeyPrefix+role).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	perms := []string{}
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false, fmt.Errorf("decode cached permissions for %q: %w", role, err)
	}
	return perms, true, nil
}

func (c *RedisPermissionCache) Set(ctx context.Context, role string, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	raw, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, permKeyPrefix+role, raw, c.ttl).Err()
}

func (c *RedisPermissionCache) Delete(ctx context.Context, role string) error {
	return c.client.Del(ctx, permKeyPrefix+role).Err()
}

func (c *RedisPermissionCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, permKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
