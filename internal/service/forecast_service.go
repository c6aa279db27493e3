package service

import (
	"context"
	"sort"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/cache"
	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/forecast"
	"github.com/rs/zerolog/log"
)

const defaultRateLookbackDays = 30

// ForecastService fronts the forecast engine for the API layer and memoizes
// full runs in the forecast cache.
type ForecastService struct {
	engine *forecast.Engine
	cache  cache.ForecastCache
}

func NewForecastService(engine *forecast.Engine, cacheImpl cache.ForecastCache) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{engine: engine, cache: cacheImpl}
}

// GetForecasts returns the triaged forecast list for all materials, serving
// from cache when a fresh run is available.
func (s *ForecastService) GetForecasts(ctx context.Context) ([]domain.ForecastRecord, error) {
	if records, ok, err := s.cache.GetForecasts(ctx); err == nil && ok {
		return records, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	records, err := s.engine.GenerateForecasts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetForecasts(ctx, records); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return records, nil
}

// GetTopRecommendations returns the materials that need a reorder, most
// urgent first. Ties within an urgency tier are broken by days until
// stockout, unknown stockouts last. That secondary ordering is presentation
// policy for this endpoint only; the base forecast list keeps catalog order
// within a tier.
func (s *ForecastService) GetTopRecommendations(ctx context.Context, limit int) ([]domain.ForecastRecord, error) {
	records, err := s.GetForecasts(ctx)
	if err != nil {
		return nil, err
	}

	top := make([]domain.ForecastRecord, 0, len(records))
	for _, r := range records {
		if r.NeedsReorder {
			top = append(top, r)
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Urgency.Rank() != top[j].Urgency.Rank() {
			return top[i].Urgency.Rank() < top[j].Urgency.Rank()
		}
		return daysOrInfinity(top[i].DaysUntilStockout) < daysOrInfinity(top[j].DaysUntilStockout)
	})

	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}

	return top, nil
}

// GetSummary aggregates the forecast list into per-urgency counts.
func (s *ForecastService) GetSummary(ctx context.Context) (*domain.ForecastSummary, error) {
	records, err := s.GetForecasts(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[domain.Urgency]int{
		domain.UrgencyCritical: 0,
		domain.UrgencyHigh:     0,
		domain.UrgencyMedium:   0,
		domain.UrgencyLow:      0,
	}
	for _, r := range records {
		counts[r.Urgency]++
	}

	return &domain.ForecastSummary{
		Counts:      counts,
		Total:       len(records),
		GeneratedAt: time.Now(),
	}, nil
}

// GetProjection returns the 30-day depletion curve for one material.
func (s *ForecastService) GetProjection(ctx context.Context, materialID string) ([]domain.ProjectionPoint, error) {
	return s.engine.Project30Days(ctx, materialID)
}

// GetRate returns the consumption-rate estimate for one material.
func (s *ForecastService) GetRate(ctx context.Context, materialID string, lookbackDays int) (domain.ConsumptionRateEstimate, error) {
	if lookbackDays <= 0 {
		lookbackDays = defaultRateLookbackDays
	}
	return s.engine.EstimateRate(ctx, materialID, lookbackDays)
}

// Invalidate drops any cached forecast run.
func (s *ForecastService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func daysOrInfinity(days *int) int {
	if days == nil {
		return 999
	}
	return *days
}
