package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides prefixed get/set operations over redis. A helper built
// with a nil client behaves as an always-empty cache.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Display names of subjects and topics used to decorate lists.
	NameCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "names:",
	}
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
)

func (c *CacheHelper) Available() bool {
	return c.client != nil
}

func (c *CacheHelper) key(name string) string {
	return c.prefix + name
}

func (c *CacheHelper) keys(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = c.key(name)
	}
	return out
}

// Delete removes the named entries. Missing entries are not an error.
func (c *CacheHelper) Delete(ctx context.Context, names ...string) error {
	if c.client == nil || len(names) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, c.keys(names)...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// GetMultiple returns the cached values found for keys. Missing keys are
// absent from the result.
func (c *CacheHelper) GetMultiple(ctx context.Context, names []string) (map[string]string, error) {
	if c.client == nil {
		return nil, ErrCacheNotAvailable
	}
	found := make(map[string]string, len(names))
	if len(names) == 0 {
		return found, nil
	}

	values, err := c.client.MGet(ctx, c.keys(names)...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache mget error: %w", err)
	}
	for i, v := range values {
		if str, ok := v.(string); ok {
			found[names[i]] = str
		}
	}
	return found, nil
}

// SetMultiple stores several strings in one pipeline.
func (c *CacheHelper) SetMultiple(ctx context.Context, items map[string]string, ttl time.Duration) error {
	if c.client == nil || len(items) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, value := range items {
			pipe.Set(ctx, c.key(name), value, ttl)
		}
		return nil
	})
	return err
}

// InvalidatePattern deletes every entry under the helper prefix matching
// pattern. It walks the keyspace with SCAN.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	match := c.key(pattern)
	iter := c.client.Scan(ctx, 0, match, 100).Iterator()
	var doomed []string
	for iter.Next(ctx) {
		doomed = append(doomed, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.ErrorContext(ctx, "Cache scan failed", "error", err, "pattern", match)
		return fmt.Errorf("cache scan error: %w", err)
	}
	if len(doomed) == 0 {
		return nil
	}
	return c.client.Del(ctx, doomed...).Err()
}

// CacheManager groups the helpers used by the portal.
type CacheManager struct {
	Names  *CacheHelper
	config CacheConfig
}

func NewCacheManager(client *redis.Client, ttl time.Duration) *CacheManager {
	cfg := NameCacheConfig
	if ttl > 0 {
		cfg.TTL = ttl
	}
	return &CacheManager{
		Names:  NewCacheHelper(client, cfg.Prefix),
		config: cfg,
	}
}

func (cm *CacheManager) NameTTL() time.Duration {
	return cm.config.TTL
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Names.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.Names.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
