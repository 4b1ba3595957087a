package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// RedisStore caches canonical crawl results so repeated CMA requests for the
// same region and property kind don't re-crawl within the TTL. A nil
// *RedisStore is valid and disables caching.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("redis not configured")
	}
	return s.client.Ping(ctx).Err()
}

func resultKey(region, propertyType string) string {
	return fmt.Sprintf("cma:%s:%s", region, propertyType)
}

// GetCachedResult returns the cached result for a region/kind, or nil on
// miss or any cache error.
func (s *RedisStore) GetCachedResult(ctx context.Context, region, propertyType string) (*domain.CrawlResult, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, resultKey(region, propertyType)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.CrawlResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetCachedResult stores a result with a TTL.
func (s *RedisStore) SetCachedResult(ctx context.Context, region, propertyType string, result *domain.CrawlResult, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resultKey(region, propertyType), raw, ttl).Err()
}
