// Package cache provides a Redis read-through cache for catalog items.
package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalog"
)

// ItemCache caches catalog items in Redis. Stock-mutating reads bypass
// it; the catalog service invalidates entries on every item write.
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ catalog.ItemCache = (*ItemCache)(nil)

// NewItemCache connects a Redis-backed item cache.
func NewItemCache(addr, password string, db int, ttl time.Duration) *ItemCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &ItemCache{client: client, ttl: ttl}
}

// Ping verifies the Redis connection.
func (c *ItemCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *ItemCache) Close() error {
	return c.client.Close()
}

func itemKey(itemID id.ID) string {
	return "item:" + itemID.String()
}

func (c *ItemCache) Get(ctx context.Context, itemID id.ID) (*catalog.Item, bool, error) {
	val, err := c.client.Get(ctx, itemKey(itemID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var item catalog.Item
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

func (c *ItemCache) Set(ctx context.Context, item *catalog.Item) error {
	if item == nil {
		return nil
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemKey(item.ID), payload, c.ttl).Err()
}

func (c *ItemCache) Invalidate(ctx context.Context, itemID id.ID) error {
	return c.client.Del(ctx, itemKey(itemID)).Err()
}
