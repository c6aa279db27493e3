package forecast

import (
	"math"

	"github.com/buildstok/inventory/backend-go/internal/domain"
)

// Engine tuning constants. The lookback windows are deliberately different
// per metric: short for reorder points (reactive), medium for stockout
// projection, long for annual-demand estimation.
const (
	reorderLookbackDays  = 30
	stockoutLookbackDays = 60
	eoqLookbackDays      = 90

	weeklyWindowCapDays   = 84
	projectionHorizonDays = 30

	safetyStockFactor     = 1.5
	defaultLeadTimeDays   = 7
	defaultUnitPrice      = 10.0
	defaultOrderCost      = 100.0
	defaultHoldingCostPct = 0.25
)

// EstimateFromEvents computes a consumption-rate estimate from events already
// restricted to the lookback window. The slice must be ordered most-recent-first;
// the trend split below bisects it by position and relies on that ordering.
func EstimateFromEvents(events []domain.ConsumptionEvent, lookbackDays int) domain.ConsumptionRateEstimate {
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	if len(events) == 0 {
		return domain.ConsumptionRateEstimate{
			TrendFactor: 1,
			Confidence:  domain.ConfidenceLow,
		}
	}

	total := sumQuantities(events)

	// 1. Daily average over the whole window
	dailyAverage := total / float64(lookbackDays)

	// 2. Weekly average from the head of the list: one record per elapsed
	// week of the (capped) window. This counts records, not a 7-day date
	// filter, so it only matches a true week when consumption is logged
	// once per day.
	windowDays := lookbackDays
	if windowDays > weeklyWindowCapDays {
		windowDays = weeklyWindowCapDays
	}
	take := windowDays / 7
	if take > len(events) {
		take = len(events)
	}
	weeklySum := sumQuantities(events[:take])
	weeklyAverage := weeklySum / math.Max(1, float64(take))

	// 3. Monthly average extrapolated from the daily rate
	monthlyAverage := dailyAverage * 30

	// 4. Trend factor: recent half vs older half, split by record count.
	// The head of the list is the recent half.
	half := len(events) / 2
	recentAvg := sumQuantities(events[:half]) / math.Max(1, float64(half))
	olderAvg := sumQuantities(events[half:]) / math.Max(1, float64(len(events)-half))

	trendFactor := 1.0
	if olderAvg > 0 {
		trendFactor = recentAvg / olderAvg
	}

	return domain.ConsumptionRateEstimate{
		DailyAverage:   dailyAverage,
		WeeklyAverage:  weeklyAverage,
		MonthlyAverage: monthlyAverage,
		TrendFactor:    trendFactor,
		Confidence:     domain.ConfidenceForSamples(len(events)),
		SampleCount:    len(events),
	}
}

// ReorderPointFrom computes the reorder point for a trend-adjusted daily rate:
// expected demand during lead time plus safety stock at a fixed 1.5 factor.
// Algebraically this is dailyRate * leadTimeDays * 2.5.
func ReorderPointFrom(dailyRate float64, leadTimeDays int) float64 {
	leadDemand := dailyRate * float64(leadTimeDays)
	safetyStock := leadDemand * safetyStockFactor

	return leadDemand + safetyStock
}

// EOQFrom computes the economic order quantity. When annual demand or holding
// cost is non-positive the classic formula degenerates, so a quarter of the
// annual demand is returned instead.
func EOQFrom(annualDemand, orderCost, holdingCost float64) float64 {
	if holdingCost <= 0 || annualDemand <= 0 {
		return annualDemand * 0.25
	}

	return math.Sqrt(2 * annualDemand * orderCost / holdingCost)
}

// ClassifyUrgency maps days-until-stockout and reorder need to an urgency
// tier. A nil daysUntil means no depletion trend could be projected.
func ClassifyUrgency(daysUntil *int, needsReorder bool) domain.Urgency {
	switch {
	case daysUntil != nil && *daysUntil < 7:
		return domain.UrgencyCritical
	case daysUntil != nil && *daysUntil < 14:
		return domain.UrgencyHigh
	case needsReorder:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func sumQuantities(events []domain.ConsumptionEvent) float64 {
	var total float64
	for _, e := range events {
		total += e.QuantityUsed
	}

	return total
}
