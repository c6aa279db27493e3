// Package forecast turns raw consumption history into rate estimates,
// stockout predictions, replenishment parameters and a triaged forecast
// list for every tracked material.
package forecast

import (
	"context"
	"math"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Engine is the forecasting and replenishment engine. It is stateless apart
// from the injected repositories; every computation is a pure function of
// current stock, consumption history and static material parameters, plus
// the best-effort write-back of the two cached replenishment fields.
type Engine struct {
	materials   repository.MaterialRepository
	consumption repository.ConsumptionRepository
	workers     int
	now         func() time.Time
}

// NewEngine creates an engine over the given repositories. workers bounds the
// fan-out of full forecast runs; values below 1 fall back to serial execution.
func NewEngine(materials repository.MaterialRepository, consumption repository.ConsumptionRepository, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}

	return &Engine{
		materials:   materials,
		consumption: consumption,
		workers:     workers,
		now:         time.Now,
	}
}

// EstimateRate aggregates the material's consumption events within the
// lookback window into daily/weekly/monthly averages, a trend factor and a
// confidence tier. An empty history yields a zero estimate, not an error.
func (e *Engine) EstimateRate(ctx context.Context, materialID string, lookbackDays int) (domain.ConsumptionRateEstimate, error) {
	cutoff := e.now().AddDate(0, 0, -lookbackDays)

	events, err := e.consumption.ListRecentFirst(ctx, materialID, cutoff)
	if err != nil {
		return domain.ConsumptionRateEstimate{}, err
	}

	return EstimateFromEvents(events, lookbackDays), nil
}

// PredictStockoutDate projects when the material runs out. A material already
// at or below zero stock is out now. When there is no depletion trend the
// returned date is nil: nothing to project.
func (e *Engine) PredictStockoutDate(ctx context.Context, materialID string) (*time.Time, error) {
	m, err := e.materials.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if m.CurrentStock <= 0 {
		now := e.now()
		return &now, nil
	}

	est, err := e.EstimateRate(ctx, materialID, stockoutLookbackDays)
	if err != nil {
		return nil, err
	}

	adjustedRate := est.DailyAverage * est.TrendFactor
	if adjustedRate <= 0 {
		return nil, nil
	}

	days := int(math.Floor(m.CurrentStock / adjustedRate))
	date := e.now().AddDate(0, 0, days)

	return &date, nil
}

// ComputeReorderPoint computes the reorder point from the 30-day
// trend-adjusted rate and writes it back to the material as a cached field.
// The write is best-effort memoization: a failure is logged and the computed
// value is still returned.
func (e *Engine) ComputeReorderPoint(ctx context.Context, materialID string) (float64, error) {
	m, err := e.materials.GetMaterial(ctx, materialID)
	if err != nil {
		return 0, err
	}

	est, err := e.EstimateRate(ctx, materialID, reorderLookbackDays)
	if err != nil {
		return 0, err
	}

	dailyRate := est.DailyAverage * est.TrendFactor
	reorderPoint := ReorderPointFrom(dailyRate, leadTimeOf(m))

	if err := e.materials.SetReorderPoint(ctx, materialID, reorderPoint); err != nil {
		log.Warn().Err(err).Str("material_id", materialID).Msg("failed to persist reorder point")
	}

	return reorderPoint, nil
}

// ComputeEOQ computes the economic order quantity from the 90-day demand and
// writes it back as a cached field, again best-effort.
func (e *Engine) ComputeEOQ(ctx context.Context, materialID string) (float64, error) {
	m, err := e.materials.GetMaterial(ctx, materialID)
	if err != nil {
		return 0, err
	}

	est, err := e.EstimateRate(ctx, materialID, eoqLookbackDays)
	if err != nil {
		return 0, err
	}

	annualDemand := est.DailyAverage * 365
	eoq := EOQFrom(annualDemand, defaultOrderCost, unitPriceOf(m)*defaultHoldingCostPct)

	if err := e.materials.SetOptimalOrderQty(ctx, materialID, eoq); err != nil {
		log.Warn().Err(err).Str("material_id", materialID).Msg("failed to persist optimal order qty")
	}

	return eoq, nil
}

func leadTimeOf(m *domain.Material) int {
	if m.LeadTimeDays <= 0 {
		return defaultLeadTimeDays
	}

	return m.LeadTimeDays
}

func unitPriceOf(m *domain.Material) float64 {
	if m.UnitPrice <= 0 {
		return defaultUnitPrice
	}

	return m.UnitPrice
}

// filterSince keeps the events recorded at or after cutoff. The input is
// most-recent-first, so the kept prefix stays ordered.
func filterSince(events []domain.ConsumptionEvent, cutoff time.Time) []domain.ConsumptionEvent {
	for i, e := range events {
		if e.RecordedAt.Before(cutoff) {
			return events[:i]
		}
	}

	return events
}
