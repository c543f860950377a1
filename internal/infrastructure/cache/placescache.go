package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicwatch/civicwatch/internal/application/place/dto"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const (
	placesKeyPrefix = "places:catalog:"
	basePlacesTTL   = 5 * time.Minute
	placesTTLJitter = time.Minute // TTL range: 5-6 min (anti-stampede)
)

// RedisPlacesCache keeps the serialized place catalog shown on the report form.
type RedisPlacesCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisPlacesCache(client *redis.Client, logger logger.Interface) *RedisPlacesCache {
	return &RedisPlacesCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisPlacesCache) key(availableOnly bool) string {
	if availableOnly {
		return placesKeyPrefix + "available"
	}
	return placesKeyPrefix + "all"
}

// Get returns nil on a cache miss.
func (c *RedisPlacesCache) Get(ctx context.Context, availableOnly bool) (*dto.PlacesDTO, error) {
	raw, err := c.client.Get(ctx, c.key(availableOnly)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get places from cache: %w", err)
	}

	var places dto.PlacesDTO
	if err := json.Unmarshal(raw, &places); err != nil {
		c.logger.Warnw("dropping unreadable places cache entry", "error", err)
		_ = c.client.Del(ctx, c.key(availableOnly)).Err()
		return nil, nil
	}
	return &places, nil
}

func (c *RedisPlacesCache) Set(ctx context.Context, availableOnly bool, places *dto.PlacesDTO) error {
	raw, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("failed to encode places: %w", err)
	}

	ttl := basePlacesTTL + time.Duration(rand.Int64N(int64(placesTTLJitter)))
	if err := c.client.Set(ctx, c.key(availableOnly), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set places cache: %w", err)
	}
	return nil
}

// Invalidate drops both catalog variants.
func (c *RedisPlacesCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key(true), c.key(false)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate places cache: %w", err)
	}
	return nil
}
