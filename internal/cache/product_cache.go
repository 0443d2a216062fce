package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// ProductCache keeps storefront product reads off the database.
type ProductCache interface {
	Get(ctx context.Context, slug string) (*models.Product, bool)
	Set(ctx context.Context, product *models.Product) error
	Invalidate(ctx context.Context, slugs ...string) error
}

// RedisProductCache stores products as JSON under "product:<slug>".
type RedisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisProductCache connects to addr and verifies the connection with a ping.
func NewRedisProductCache(ctx context.Context, addr, password string, ttl time.Duration) (*RedisProductCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &RedisProductCache{rdb: rdb, ttl: ttl}, nil
}

func key(slug string) string {
	return "product:" + slug
}

// Get returns the cached product. Misses and decode errors both report false.
func (c *RedisProductCache) Get(ctx context.Context, slug string) (*models.Product, bool) {
	val, err := c.rdb.Get(ctx, key(slug)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Set caches product under its slug for the configured TTL.
func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("cache: marshal product %s: %w", product.ID, err)
	}
	return c.rdb.Set(ctx, key(product.Slug), data, c.ttl).Err()
}

// Invalidate drops the given slugs.
func (c *RedisProductCache) Invalidate(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		keys = append(keys, key(s))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *RedisProductCache) Close() error {
	return c.rdb.Close()
}

// NoopProductCache is used when no redis is configured.
type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, string) (*models.Product, bool) { return nil, false }
func (NoopProductCache) Set(context.Context, *models.Product) error          { return nil }
func (NoopProductCache) Invalidate(context.Context, ...string) error         { return nil }
