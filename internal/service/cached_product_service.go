package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cachedProductService wraps a ProductService with a Redis read-through
// cache for single-product lookups. The catalogue changes rarely, so cache
// entries simply expire; the cache is never a source of truth and every
// Redis failure falls back to the wrapped service.
type cachedProductService struct {
	inner  ProductService
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProductService decorates a product service with a Redis cache.
func NewCachedProductService(inner ProductService, client *redis.Client, ttl time.Duration, logger zerolog.Logger) ProductService {
	return &cachedProductService{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("service", "product-cache").Logger(),
	}
}

// GetAll bypasses the cache; listings are paginated and cheap to serve from
// the database.
func (s *cachedProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return s.inner.GetAll(ctx, limit, offset)
}

// GetByID serves the product from Redis when cached, falling back to the
// wrapped service and populating the cache on a miss.
func (s *cachedProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	key := productCacheKey(id)

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var product model.Product
		if unmarshalErr := json.Unmarshal([]byte(cached), &product); unmarshalErr == nil {
			return &product, nil
		}
		// A corrupt entry is dropped and refetched.
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	product, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := s.client.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
			s.logger.Warn().Err(setErr).Str("key", key).Msg("cache write failed")
		}
	}

	return product, nil
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id.String())
}
