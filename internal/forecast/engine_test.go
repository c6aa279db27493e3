package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/buildstok/inventory/backend-go/internal/repository/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *memory.MaterialRepository, *memory.ConsumptionRepository) {
	t.Helper()

	materials := memory.NewMaterialRepository()
	consumption := memory.NewConsumptionRepository()

	engine := NewEngine(materials, consumption, 4)
	engine.now = func() time.Time { return testNow }

	return engine, materials, consumption
}

func seedMaterial(t *testing.T, repo *memory.MaterialRepository, m domain.Material) {
	t.Helper()
	if err := repo.CreateMaterial(context.Background(), &m); err != nil {
		t.Fatalf("seeding material %s: %v", m.ID, err)
	}
}

// seedDailyConsumption records one event per day for the given number of
// days, offset an hour from the window boundary so cutoff comparisons are
// unambiguous.
func seedDailyConsumption(t *testing.T, repo *memory.ConsumptionRepository, materialID string, days int, quantity float64) {
	t.Helper()
	for i := 0; i < days; i++ {
		e := &domain.ConsumptionEvent{
			MaterialID:   materialID,
			QuantityUsed: quantity,
			RecordedAt:   testNow.Add(-time.Duration(i)*24*time.Hour - time.Hour),
		}
		if err := repo.RecordConsumption(context.Background(), e); err != nil {
			t.Fatalf("seeding consumption for %s: %v", materialID, err)
		}
	}
}

func TestEstimateRate_NoHistory(t *testing.T) {
	engine, materials, _ := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Portland Cement", CurrentStock: 100})

	est, err := engine.EstimateRate(context.Background(), "cement", 60)
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	if est.DailyAverage != 0 || est.Confidence != domain.ConfidenceLow {
		t.Errorf("empty history estimate = %+v, want zero daily average and low confidence", est)
	}
}

func TestEstimateRate_WindowedFetch(t *testing.T) {
	engine, _, consumption := newTestEngine(t)
	// 90 days of history at 5/day; a 60-day window must only see 60 events
	seedDailyConsumption(t, consumption, "cement", 90, 5)

	est, err := engine.EstimateRate(context.Background(), "cement", 60)
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	if est.SampleCount != 60 {
		t.Errorf("SampleCount = %d, want 60", est.SampleCount)
	}
	if est.DailyAverage != 5 {
		t.Errorf("DailyAverage = %v, want 5", est.DailyAverage)
	}
	if est.TrendFactor != 1 {
		t.Errorf("TrendFactor = %v, want 1", est.TrendFactor)
	}
}

func TestPredictStockoutDate_ZeroStock(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "sand", Name: "Sand", CurrentStock: 0})
	seedDailyConsumption(t, consumption, "sand", 30, 2)

	date, err := engine.PredictStockoutDate(context.Background(), "sand")
	if err != nil {
		t.Fatalf("PredictStockoutDate returned error: %v", err)
	}
	if date == nil || !date.Equal(testNow) {
		t.Errorf("stockout date = %v, want now for zero stock", date)
	}
}

func TestPredictStockoutDate_NoDepletionTrend(t *testing.T) {
	engine, materials, _ := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "gravel", Name: "Gravel", CurrentStock: 500})

	date, err := engine.PredictStockoutDate(context.Background(), "gravel")
	if err != nil {
		t.Fatalf("PredictStockoutDate returned error: %v", err)
	}
	if date != nil {
		t.Errorf("stockout date = %v, want nil without consumption", date)
	}
}

func TestPredictStockoutDate_ProjectsFloorOfDays(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "rebar", Name: "Rebar", CurrentStock: 12})
	seedDailyConsumption(t, consumption, "rebar", 60, 5)

	date, err := engine.PredictStockoutDate(context.Background(), "rebar")
	if err != nil {
		t.Fatalf("PredictStockoutDate returned error: %v", err)
	}
	// 12 / 5 = 2.4 days, floored to 2
	want := testNow.AddDate(0, 0, 2)
	if date == nil || !date.Equal(want) {
		t.Errorf("stockout date = %v, want %v", date, want)
	}
}

func TestPredictStockoutDate_UnknownMaterial(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.PredictStockoutDate(context.Background(), "nope")
	if !errors.Is(err, repository.ErrMaterialNotFound) {
		t.Errorf("err = %v, want ErrMaterialNotFound", err)
	}
}

func TestComputeReorderPoint_PersistsAndReturns(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	// lead_time_days unset falls back to 7
	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Portland Cement", CurrentStock: 300})
	seedDailyConsumption(t, consumption, "cement", 60, 5)

	got, err := engine.ComputeReorderPoint(context.Background(), "cement")
	if err != nil {
		t.Fatalf("ComputeReorderPoint returned error: %v", err)
	}
	want := 5.0 * 7 * 2.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("reorder point = %v, want %v", got, want)
	}

	m, err := materials.GetMaterial(context.Background(), "cement")
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if math.Abs(m.ReorderPoint-want) > 1e-9 {
		t.Errorf("persisted reorder point = %v, want %v", m.ReorderPoint, want)
	}
}

func TestComputeEOQ_PersistsAndReturns(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	// unit_price unset falls back to 10
	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Portland Cement", CurrentStock: 300})
	seedDailyConsumption(t, consumption, "cement", 90, 5)

	got, err := engine.ComputeEOQ(context.Background(), "cement")
	if err != nil {
		t.Fatalf("ComputeEOQ returned error: %v", err)
	}
	annualDemand := 5.0 * 365
	want := math.Sqrt(2 * annualDemand * 100 / 2.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("eoq = %v, want %v", got, want)
	}

	m, err := materials.GetMaterial(context.Background(), "cement")
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if math.Abs(m.OptimalOrderQty-want) > 1e-9 {
		t.Errorf("persisted eoq = %v, want %v", m.OptimalOrderQty, want)
	}
}

func TestComputeEOQ_NoDemandFallback(t *testing.T) {
	engine, materials, _ := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "paint", Name: "Paint", CurrentStock: 40})

	got, err := engine.ComputeEOQ(context.Background(), "paint")
	if err != nil {
		t.Fatalf("ComputeEOQ returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("eoq with no demand = %v, want 0", got)
	}
}

// failingMaterialRepo simulates a store whose cache-field writes fail.
type failingMaterialRepo struct {
	repository.MaterialRepository
}

func (f *failingMaterialRepo) SetReorderPoint(ctx context.Context, id string, value float64) error {
	return errors.New("write refused")
}

func (f *failingMaterialRepo) SetOptimalOrderQty(ctx context.Context, id string, value float64) error {
	return errors.New("write refused")
}

func TestComputeReorderPoint_PersistenceFailureStillReturnsValue(t *testing.T) {
	materials := memory.NewMaterialRepository()
	consumption := memory.NewConsumptionRepository()

	engine := NewEngine(&failingMaterialRepo{MaterialRepository: materials}, consumption, 1)
	engine.now = func() time.Time { return testNow }

	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Portland Cement", CurrentStock: 300})
	seedDailyConsumption(t, consumption, "cement", 60, 5)

	got, err := engine.ComputeReorderPoint(context.Background(), "cement")
	if err != nil {
		t.Fatalf("ComputeReorderPoint returned error despite best-effort persistence: %v", err)
	}
	want := 5.0 * 7 * 2.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("reorder point = %v, want %v", got, want)
	}
}
