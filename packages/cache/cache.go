// Package cache stores recent extraction results in Redis keyed by URL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pricealert/packages/domain"
	"pricealert/packages/metrics"
)

type ResultCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func New(client redis.Cmdable, prefix string, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ResultCache) Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get reports a miss as (nil, false, nil).
func (c *ResultCache) Get(ctx context.Context, rawURL string) (*domain.ExtractionResult, bool, error) {
	data, err := c.client.Get(ctx, c.Key(rawURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var res domain.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return &res, true, nil
}

func (c *ResultCache) Set(ctx context.Context, rawURL string, res *domain.ExtractionResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(rawURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Connect opens a client and pings it so a misconfigured address fails at startup.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
