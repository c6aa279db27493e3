package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/config"
	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix   = "forecast:records"
	forecastScanBatches = 100
)

// ForecastCache memoizes full forecast runs for the dashboard. A forecast is
// a pure derivation of the store state, so serving a slightly stale copy is
// acceptable within the configured TTL.
type ForecastCache interface {
	GetForecasts(ctx context.Context) ([]domain.ForecastRecord, bool, error)
	SetForecasts(ctx context.Context, records []domain.ForecastRecord) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetForecasts(ctx context.Context) ([]domain.ForecastRecord, bool, error) {
	payload, err := c.client.Get(ctx, forecastKeyPrefix).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var records []domain.ForecastRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return records, true, nil
}

func (c *redisForecastCache) SetForecasts(ctx context.Context, records []domain.ForecastRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, forecastKeyPrefix, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatches)
}

func (n *noopForecastCache) GetForecasts(ctx context.Context) ([]domain.ForecastRecord, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetForecasts(ctx context.Context, records []domain.ForecastRecord) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}
