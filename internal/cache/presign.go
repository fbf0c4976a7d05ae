package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const presignKeyPrefix = "storage:presign:"

// PresignCache remembers presigned object URLs until shortly before they
// expire.
type PresignCache interface {
	Get(ctx context.Context, objectKey string) (string, bool, error)
	Set(ctx context.Context, objectKey, url string, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Close() error
}

type redisPresignCache struct {
	client *redis.Client
}

type noopPresignCache struct{}

// NewPresignCache connects to Redis when caching is enabled and falls back
// to a cache that never hits otherwise.
func NewPresignCache(cfg config.CacheConfig) (PresignCache, error) {
	if !cfg.Enabled {
		return &noopPresignCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisPresignCache{client: client}, nil
}

// NewRedisPresignCache wraps an existing client.
func NewRedisPresignCache(client *redis.Client) PresignCache {
	return &redisPresignCache{client: client}
}

func NewNoopPresignCache() PresignCache {
	return &noopPresignCache{}
}

func (c *redisPresignCache) Get(ctx context.Context, objectKey string) (string, bool, error) {
	url, err := c.client.Get(ctx, presignKeyPrefix+objectKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return url, true, nil
}

func (c *redisPresignCache) Set(ctx context.Context, objectKey, url string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, presignKeyPrefix+objectKey, url, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPresignCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	return deleteKeysWithPrefix(ctx, c.client, presignKeyPrefix+prefix, scanBatchSize)
}

func (c *redisPresignCache) Close() error {
	return c.client.Close()
}

func (n *noopPresignCache) Get(ctx context.Context, objectKey string) (string, bool, error) {
	return "", false, nil
}

func (n *noopPresignCache) Set(ctx context.Context, objectKey, url string, ttl time.Duration) error {
	return nil
}

func (n *noopPresignCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	return nil
}

func (n *noopPresignCache) Close() error {
	return nil
}
