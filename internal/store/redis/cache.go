package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultFaviconTTL is how long a probed favicon URL stays cached
const DefaultFaviconTTL = 24 * time.Hour

// FaviconCache remembers domain -> favicon URL probes
type FaviconCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFaviconCache creates a favicon cache. A zero ttl uses DefaultFaviconTTL.
func NewFaviconCache(client *redis.Client, ttl time.Duration) *FaviconCache {
	if ttl <= 0 {
		ttl = DefaultFaviconTTL
	}
	return &FaviconCache{client: client, ttl: ttl}
}

// Put stores a favicon URL for domain
func (c *FaviconCache) Put(ctx context.Context, domain, url string) error {
	if err := c.client.Set(ctx, FaviconKey(domain), url, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache favicon: %w", err)
	}
	return nil
}

// Lookup returns the cached favicon URL, or "" on a miss
func (c *FaviconCache) Lookup(ctx context.Context, domain string) (string, error) {
	url, err := c.client.Get(ctx, FaviconKey(domain)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached favicon: %w", err)
	}
	return url, nil
}
