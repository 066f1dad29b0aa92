// Package cache stores computed dashboards. Only aggregates are cached;
// payment settlement state is always read from the ledger.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketlevy/internal/dashboard/models"
)

const keyPrefix = "levy:dashboard:"

// RedisCache keeps dashboards in Redis so every instance serves the same
// precomputed snapshot.
type RedisCache struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns nil, nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.Dashboard, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d models.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode cached dashboard %s: %w", key, err)
	}
	return &d, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, d *models.Dashboard, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dashboard %s: %w", key, err)
	}
	return c.client.Set(ctx, keyPrefix+key, raw, ttl).Err()
}
