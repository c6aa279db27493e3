package forecast

import (
	"context"
	"math"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
)

// Project30Days produces a day-by-day depletion curve for one material,
// suitable for charting and what-if scenarios. Day 0 always equals the
// current stock exactly; each following day subtracts the trend-adjusted
// daily rate. Recomputing the reorder point here also refreshes the cached
// field on the material, same as a forecast run would.
func (e *Engine) Project30Days(ctx context.Context, materialID string) ([]domain.ProjectionPoint, error) {
	m, err := e.materials.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	est, err := e.EstimateRate(ctx, materialID, stockoutLookbackDays)
	if err != nil {
		return nil, err
	}
	adjustedRate := est.DailyAverage * est.TrendFactor

	reorderPoint, err := e.ComputeReorderPoint(ctx, materialID)
	if err != nil {
		return nil, err
	}

	criticalThreshold := m.CriticalThreshold
	if criticalThreshold == 0 {
		criticalThreshold = reorderPoint * 0.5
	}

	today := e.today()
	stock := m.CurrentStock

	points := make([]domain.ProjectionPoint, 0, projectionHorizonDays)
	for i := 0; i < projectionHorizonDays; i++ {
		points = append(points, domain.ProjectionPoint{
			Date:              today.AddDate(0, 0, i),
			ExpectedStock:     math.Max(0, stock),
			ReorderPoint:      reorderPoint,
			CriticalThreshold: criticalThreshold,
			IsBelowReorder:    stock <= reorderPoint,
			IsBelowCritical:   stock <= criticalThreshold,
		})
		stock -= adjustedRate
	}

	return points, nil
}

func (e *Engine) today() time.Time {
	now := e.now()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
