package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const UserCacheTTL = 5 * time.Minute

type UserCache struct {
	client *redis.Client
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

// Get returns the cached value for key, or nil on a cache miss.
func (c *UserCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Set stores data under key with the cache TTL.
func (c *UserCache) Set(ctx context.Context, key string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, UserCacheTTL).Err()
}

// Invalidate drops the given keys after a record mutation.
func (c *UserCache) Invalidate(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Build cache key for a single username lookup
func UserKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}

// Build cache key for the full user listing
func AllUsersKey() string {
	return "users:all"
}
