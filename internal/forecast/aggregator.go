package forecast

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// GenerateForecasts builds a forecast record for every material and returns
// them sorted by urgency, most urgent first. Materials are processed in
// parallel; results are joined back into catalog order before sorting, so the
// output order does not depend on goroutine completion order. Ties within an
// urgency tier keep catalog order.
func (e *Engine) GenerateForecasts(ctx context.Context) ([]domain.ForecastRecord, error) {
	materials, err := e.materials.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ForecastRecord, len(materials))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, m := range materials {
		i, m := i, m
		g.Go(func() error {
			record, err := e.buildForecast(gctx, m)
			if err != nil {
				// A material deleted mid-run yields no record; anything
				// else aborts the batch.
				if errors.Is(err, repository.ErrMaterialNotFound) {
					log.Warn().Str("material_id", m.ID).Msg("material vanished during forecast run, skipping")
					return nil
				}
				return err
			}
			results[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]domain.ForecastRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Urgency.Rank() < records[j].Urgency.Rank()
	})

	return records, nil
}

// buildForecast computes one material's forecast record. The material is
// re-read by id so the record reflects current stock at computation time;
// the consumption history is fetched once at the widest window and narrowed
// in memory for the shorter-window estimates, so a full run costs one history
// round-trip per material instead of three.
func (e *Engine) buildForecast(ctx context.Context, listed domain.Material) (*domain.ForecastRecord, error) {
	now := e.now()

	m, err := e.materials.GetMaterial(ctx, listed.ID)
	if err != nil {
		return nil, err
	}

	events, err := e.consumption.ListRecentFirst(ctx, m.ID, now.AddDate(0, 0, -eoqLookbackDays))
	if err != nil {
		return nil, err
	}

	est90 := EstimateFromEvents(events, eoqLookbackDays)
	est60 := EstimateFromEvents(filterSince(events, now.AddDate(0, 0, -stockoutLookbackDays)), stockoutLookbackDays)
	est30 := EstimateFromEvents(filterSince(events, now.AddDate(0, 0, -reorderLookbackDays)), reorderLookbackDays)

	var (
		stockoutDate *time.Time
		daysUntil    *int
	)
	if m.CurrentStock <= 0 {
		stockoutDate = &now
		days := 0
		daysUntil = &days
	} else if adjusted := est60.DailyAverage * est60.TrendFactor; adjusted > 0 {
		days := int(math.Floor(m.CurrentStock / adjusted))
		date := now.AddDate(0, 0, days)
		stockoutDate = &date
		daysUntil = &days
	}

	dailyRate := est30.DailyAverage * est30.TrendFactor
	reorderPoint := ReorderPointFrom(dailyRate, leadTimeOf(m))
	if err := e.materials.SetReorderPoint(ctx, m.ID, reorderPoint); err != nil {
		log.Warn().Err(err).Str("material_id", m.ID).Msg("failed to persist reorder point")
	}

	eoq := EOQFrom(est90.DailyAverage*365, defaultOrderCost, unitPriceOf(m)*defaultHoldingCostPct)
	if err := e.materials.SetOptimalOrderQty(ctx, m.ID, eoq); err != nil {
		log.Warn().Err(err).Str("material_id", m.ID).Msg("failed to persist optimal order qty")
	}

	needsReorder := m.CurrentStock <= reorderPoint

	return &domain.ForecastRecord{
		MaterialID:            m.ID,
		MaterialName:          m.Name,
		Unit:                  m.Unit,
		CurrentStock:          m.CurrentStock,
		DailyConsumptionRate:  est60.DailyAverage,
		TrendFactor:           est60.TrendFactor,
		PredictedStockoutDate: stockoutDate,
		DaysUntilStockout:     daysUntil,
		ReorderPoint:          reorderPoint,
		RecommendedOrderQty:   eoq,
		NeedsReorder:          needsReorder,
		Urgency:               ClassifyUrgency(daysUntil, needsReorder),
		Confidence:            est60.Confidence,
	}, nil
}
