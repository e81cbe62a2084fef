package redis_cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

const platformStatisticsKey = "statistics:platform"

type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatisticsCache(c *Cache, ttl time.Duration) *StatisticsCache {
	return &StatisticsCache{client: c.Client, ttl: ttl}
}

// Platform returns the cached overview. A miss reports ok == false with a nil error.
func (s *StatisticsCache) Platform(ctx context.Context) (*models.PlatformStatistics, bool, error) {
	raw, err := s.client.Get(ctx, platformStatisticsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get platform statistics: %w", err)
	}

	var st models.PlatformStatistics
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false, fmt.Errorf("decode platform statistics: %w", err)
	}
	return &st, true, nil
}

func (s *StatisticsCache) SetPlatform(ctx context.Context, st *models.PlatformStatistics) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode platform statistics: %w", err)
	}
	if err := s.client.Set(ctx, platformStatisticsKey, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set platform statistics: %w", err)
	}
	return nil
}

// InvalidatePlatform drops the cached overview after a ledger write.
func (s *StatisticsCache) InvalidatePlatform(ctx context.Context) error {
	if err := s.client.Del(ctx, platformStatisticsKey).Err(); err != nil {
		return fmt.Errorf("invalidate platform statistics: %w", err)
	}
	return nil
}
