// Package redis caches generated workouts keyed by a fingerprint of the
// canonical variables, so identical requests can be served without another
// generation run.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/coach/internal/core/domain"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

// Cache wraps Redis operations for the generation pipeline. A nil *Cache
// is valid and disables caching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Redis-backed workout cache.
func NewCache(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Fingerprint derives a stable cache key from canonical variables.
func Fingerprint(vars domain.CanonicalVariables) string {
	raw, err := json.Marshal(vars)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "workout:" + hex.EncodeToString(sum[:])
}

// Get returns the cached workout for the key, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*domain.GeneratedWorkout, error) {
	if c == nil || key == "" {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var w domain.GeneratedWorkout
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &w, nil
}

// Set stores the workout under the key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, w *domain.GeneratedWorkout) error {
	if c == nil || key == "" {
		return nil
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
