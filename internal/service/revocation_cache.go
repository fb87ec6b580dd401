package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlockedTokenKeyPrefix prefixes revoked jti keys; the key lives exactly
// as long as the token would have.
const RedisBlockedTokenKeyPrefix = "blocked_token:"

// RevocationCache is a read-through accelerator in front of blocked_token_list.
// A miss says nothing; only the database is authoritative.
type RevocationCache interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRevocationCache struct {
	redisClient *redis.Client
}

func NewRedisRevocationCache(redisClient *redis.Client) *RedisRevocationCache {
	return &RedisRevocationCache{redisClient: redisClient}
}

// MarkRevoked caches jti for ttl. Non-positive TTLs are ignored since the
// token is already past its expiry.
func (c *RedisRevocationCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.redisClient.Set(ctx, c.key(jti), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("cache revoked token %s: %w", jti, err)
	}
	return nil
}

func (c *RedisRevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := c.redisClient.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token %s: %w", jti, err)
	}
	return exists > 0, nil
}

func (c *RedisRevocationCache) key(jti string) string {
	return RedisBlockedTokenKeyPrefix + jti
}
