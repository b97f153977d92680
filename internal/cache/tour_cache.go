package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/tours-service/internal/domain"
)

const tourKeyPrefix = "tours:v1:"

// TourCache is a read-through cache for single tours. Failures never reach the caller;
// a broken cache behaves like a miss.
type TourCache interface {
	Get(ctx context.Context, id string) (*domain.Tour, bool)
	Set(ctx context.Context, tour *domain.Tour)
	Invalidate(ctx context.Context, id string)
}

type redisTourCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTourCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewRedisTourCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) TourCache {
	if client == nil {
		return NoopTourCache{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisTourCache{client: client, ttl: ttl, logger: logger}
}

func tourKey(id string) string {
	return tourKeyPrefix + id
}

func (c *redisTourCache) Get(ctx context.Context, id string) (*domain.Tour, bool) {
	raw, err := c.client.Get(ctx, tourKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tour cache get failed", zap.String("tour_id", id), zap.Error(err))
		}
		return nil, false
	}
	var tour domain.Tour
	if err := json.Unmarshal(raw, &tour); err != nil {
		c.logger.Warn("tour cache entry corrupt", zap.String("tour_id", id), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &tour, true
}

func (c *redisTourCache) Set(ctx context.Context, tour *domain.Tour) {
	raw, err := json.Marshal(tour)
	if err != nil {
		c.logger.Warn("tour cache encode failed", zap.String("tour_id", tour.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, tourKey(tour.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("tour cache set failed", zap.String("tour_id", tour.ID), zap.Error(err))
	}
}

func (c *redisTourCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, tourKey(id)).Err(); err != nil {
		c.logger.Warn("tour cache invalidate failed", zap.String("tour_id", id), zap.Error(err))
	}
}

// NoopTourCache never stores anything.
type NoopTourCache struct{}

func (NoopTourCache) Get(context.Context, string) (*domain.Tour, bool) { return nil, false }
func (NoopTourCache) Set(context.Context, *domain.Tour)                {}
func (NoopTourCache) Invalidate(context.Context, string)               {}
