// Package cache handles Redis caching operations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shortr/shortr/internal/config"
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for caching operations.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping checks if the cache is healthy.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client.
func NewRedisCache(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// Verify connectivity
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get failed: %w", err)
	}
	return val, nil
}

// Set stores a value in the cache with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// Exists checks if a key exists in the cache.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists check failed: %w", err)
	}
	return n > 0, nil
}

// Ping checks if the cache is healthy.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the cache connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedLink is the cache representation of a short link. Clicks are not
// authoritative here; the database owns the counter.
type CachedLink struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	UserID      *int64    `json:"user_id,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// LinkCacher defines link-level cache operations.
// This interface enables easy mocking in tests.
type LinkCacher interface {
	Get(ctx context.Context, shortCode string) (*CachedLink, error)
	Set(ctx context.Context, link *CachedLink) error
	Delete(ctx context.Context, shortCode string) error
	Exists(ctx context.Context, shortCode string) (bool, error)
	Ping(ctx context.Context) error
}

// Ensure LinkCache implements LinkCacher
var _ LinkCacher = (*LinkCache)(nil)

// LinkCache provides link-specific caching on top of a Cache.
type LinkCache struct {
	cache      Cache
	keyPrefix  string
	defaultTTL time.Duration
}

// NewLinkCache creates a new link-specific cache.
func NewLinkCache(cache Cache, keyPrefix string, defaultTTL time.Duration) *LinkCache {
	if keyPrefix == "" {
		keyPrefix = "link:"
	}
	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour
	}
	return &LinkCache{
		cache:      cache,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a link from cache by short code.
func (c *LinkCache) Get(ctx context.Context, shortCode string) (*CachedLink, error) {
	data, err := c.cache.Get(ctx, c.key(shortCode))
	if err != nil {
		return nil, err
	}

	var link CachedLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached link: %w", err)
	}

	return &link, nil
}

// Set stores a link in cache.
func (c *LinkCache) Set(ctx context.Context, link *CachedLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	return c.cache.Set(ctx, c.key(link.ShortCode), data, c.defaultTTL)
}

// Delete removes a link from cache.
func (c *LinkCache) Delete(ctx context.Context, shortCode string) error {
	return c.cache.Delete(ctx, c.key(shortCode))
}

// Exists checks if a link exists in cache.
func (c *LinkCache) Exists(ctx context.Context, shortCode string) (bool, error) {
	return c.cache.Exists(ctx, c.key(shortCode))
}

// Ping checks if the cache is healthy.
func (c *LinkCache) Ping(ctx context.Context) error {
	return c.cache.Ping(ctx)
}

// key generates the cache key for a short code.
func (c *LinkCache) key(shortCode string) string {
	return c.keyPrefix + shortCode
}
