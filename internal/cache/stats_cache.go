package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mindprint/internal/model"
)

// StatsCache tracks how often each type code has been resolved, per
// variant, in Redis sorted sets.
type StatsCache interface {
	IncrType(ctx context.Context, variant model.Variant, typeCode string) error
	Distribution(ctx context.Context, variant model.Variant, limit int) ([]model.TypeCount, error)
}

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new stats cache.
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) key(variant model.Variant) string {
	return fmt.Sprintf("stats:types:%s", variant)
}

func (c *statsCache) IncrType(ctx context.Context, variant model.Variant, typeCode string) error {
	return c.client.ZIncrBy(ctx, c.key(variant), 1, typeCode).Err()
}

func (c *statsCache) Distribution(ctx context.Context, variant model.Variant, limit int) ([]model.TypeCount, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(variant), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.TypeCount, len(results))
	for i, z := range results {
		entries[i] = model.TypeCount{
			TypeCode: z.Member.(string),
			Count:    int64(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}
