// backend-go/internal/domain/models.go
package domain

import "time"

// Material represents one trackable construction material.
//
// ReorderPoint and OptimalOrderQty are derived caches written back by the
// replenishment calculator; the source of truth is always the consumption
// history plus the static parameters on this row.
type Material struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Unit              string    `json:"unit" db:"unit"`
	CurrentStock      float64   `json:"current_stock" db:"current_stock"`
	MinStock          float64   `json:"min_stock" db:"min_stock"`
	CriticalThreshold float64   `json:"critical_threshold" db:"critical_threshold"`
	LeadTimeDays      int       `json:"lead_time_days" db:"lead_time_days"`
	UnitPrice         float64   `json:"unit_price" db:"unit_price"`
	ReorderPoint      float64   `json:"reorder_point" db:"reorder_point"`
	OptimalOrderQty   float64   `json:"optimal_order_qty" db:"optimal_order_qty"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ConsumptionEvent is an immutable record of material usage. Events are
// append-only; nothing in this service mutates or deletes them.
type ConsumptionEvent struct {
	ID           int64     `json:"id" db:"id"`
	MaterialID   string    `json:"material_id" db:"material_id"`
	QuantityUsed float64   `json:"quantity_used" db:"quantity_used"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
	DeliveryID   *int64    `json:"delivery_id,omitempty" db:"delivery_id"`
}

// ConsumptionRateEstimate summarizes consumption over a lookback window.
type ConsumptionRateEstimate struct {
	DailyAverage   float64    `json:"daily_average"`
	WeeklyAverage  float64    `json:"weekly_average"`
	MonthlyAverage float64    `json:"monthly_average"`
	TrendFactor    float64    `json:"trend_factor"`
	Confidence     Confidence `json:"confidence"`
	SampleCount    int        `json:"sample_count"`
}

// ForecastRecord is the per-material output of a full forecast run.
type ForecastRecord struct {
	MaterialID            string     `json:"material_id"`
	MaterialName          string     `json:"material_name"`
	Unit                  string     `json:"unit"`
	CurrentStock          float64    `json:"current_stock"`
	DailyConsumptionRate  float64    `json:"daily_consumption_rate"`
	TrendFactor           float64    `json:"trend_factor"`
	PredictedStockoutDate *time.Time `json:"predicted_stockout_date"`
	DaysUntilStockout     *int       `json:"days_until_stockout"`
	ReorderPoint          float64    `json:"reorder_point"`
	RecommendedOrderQty   float64    `json:"recommended_order_qty"`
	NeedsReorder          bool       `json:"needs_reorder"`
	Urgency               Urgency    `json:"urgency"`
	Confidence            Confidence `json:"confidence"`
}

// ProjectionPoint is one day of the 30-day depletion curve.
type ProjectionPoint struct {
	Date              time.Time `json:"date"`
	ExpectedStock     float64   `json:"expected_stock"`
	ReorderPoint      float64   `json:"reorder_point"`
	CriticalThreshold float64   `json:"critical_threshold"`
	IsBelowReorder    bool      `json:"is_below_reorder"`
	IsBelowCritical   bool      `json:"is_below_critical"`
}

// ForecastSummary aggregates a forecast run by urgency for the dashboard.
type ForecastSummary struct {
	Counts      map[Urgency]int `json:"counts"`
	Total       int             `json:"total"`
	GeneratedAt time.Time       `json:"generated_at"`
}
