package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/pkg/platform/sentinel"
)

const parcelKeyPrefix = "mutafriches:enrichment:"

// DefaultParcelTTL applies when NewRedisParcelCache is given a non-positive TTL.
const DefaultParcelTTL = 24 * time.Hour

// RedisParcelCache keeps enrichment results keyed by parcel identifier.
type RedisParcelCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisParcelCache(client *redis.Client, ttl time.Duration) *RedisParcelCache {
	if ttl <= 0 {
		ttl = DefaultParcelTTL
	}
	return &RedisParcelCache{client: client, ttl: ttl}
}

// Get returns sentinel.ErrCacheMiss when nothing is stored for identifier.
func (c *RedisParcelCache) Get(ctx context.Context, identifier string) (*pipeline.Result, error) {
	raw, err := c.client.Get(ctx, parcelKeyPrefix+identifier).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cached enrichment: %w", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode cached enrichment: %w", err)
	}
	return &res, nil
}

func (c *RedisParcelCache) Set(ctx context.Context, identifier string, res *pipeline.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode enrichment: %w", err)
	}
	if err := c.client.Set(ctx, parcelKeyPrefix+identifier, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached enrichment: %w", err)
	}
	return nil
}

// Invalidate drops the cached result of identifier.
func (c *RedisParcelCache) Invalidate(ctx context.Context, identifier string) error {
	return c.client.Del(ctx, parcelKeyPrefix+identifier).Err()
}
