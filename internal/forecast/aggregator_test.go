package forecast

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/buildstok/inventory/backend-go/internal/repository/memory"
)

// seedForecastFixture creates four materials whose histories force the
// urgencies low, critical, high, critical in catalog order.
func seedForecastFixture(t *testing.T, materials *memory.MaterialRepository, consumption *memory.ConsumptionRepository) {
	t.Helper()

	// All consume 5/day with a flat trend; reorder point with the default
	// 7-day lead time is 87.5.
	seedMaterial(t, materials, domain.Material{ID: "m-low", Name: "Gravel", CurrentStock: 10000})
	seedMaterial(t, materials, domain.Material{ID: "m-crit-1", Name: "Cement", CurrentStock: 10})
	seedMaterial(t, materials, domain.Material{ID: "m-high", Name: "Sand", CurrentStock: 50})
	seedMaterial(t, materials, domain.Material{ID: "m-crit-2", Name: "Rebar", CurrentStock: 20})

	for _, id := range []string{"m-low", "m-crit-1", "m-high", "m-crit-2"} {
		seedDailyConsumption(t, consumption, id, 90, 5)
	}
}

func TestGenerateForecasts_SortsByUrgencyKeepingCatalogOrderForTies(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	seedForecastFixture(t, materials, consumption)

	records, err := engine.GenerateForecasts(context.Background())
	if err != nil {
		t.Fatalf("GenerateForecasts returned error: %v", err)
	}

	gotIDs := make([]string, len(records))
	gotUrgencies := make([]domain.Urgency, len(records))
	for i, r := range records {
		gotIDs[i] = r.MaterialID
		gotUrgencies[i] = r.Urgency
	}

	wantIDs := []string{"m-crit-1", "m-crit-2", "m-high", "m-low"}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("record order = %v, want %v", gotIDs, wantIDs)
	}

	wantUrgencies := []domain.Urgency{domain.UrgencyCritical, domain.UrgencyCritical, domain.UrgencyHigh, domain.UrgencyLow}
	if !reflect.DeepEqual(gotUrgencies, wantUrgencies) {
		t.Errorf("urgencies = %v, want %v", gotUrgencies, wantUrgencies)
	}
}

func TestGenerateForecasts_MediumWhenReorderNeededWithoutImminentStockout(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	// 30-day lead time pushes the reorder point to 375 while 100/5 = 20
	// days of cover keeps the stockout outside the high window.
	seedMaterial(t, materials, domain.Material{ID: "m-med", Name: "Lime", CurrentStock: 100, LeadTimeDays: 30})
	seedDailyConsumption(t, consumption, "m-med", 90, 5)

	records, err := engine.GenerateForecasts(context.Background())
	if err != nil {
		t.Fatalf("GenerateForecasts returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Urgency != domain.UrgencyMedium {
		t.Errorf("urgency = %v, want medium", r.Urgency)
	}
	if !r.NeedsReorder {
		t.Error("NeedsReorder = false, want true")
	}
	if r.DaysUntilStockout == nil || *r.DaysUntilStockout != 20 {
		t.Errorf("DaysUntilStockout = %v, want 20", r.DaysUntilStockout)
	}
}

func TestGenerateForecasts_PersistsCachedFields(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Cement", CurrentStock: 300})
	seedDailyConsumption(t, consumption, "cement", 90, 5)

	if _, err := engine.GenerateForecasts(context.Background()); err != nil {
		t.Fatalf("GenerateForecasts returned error: %v", err)
	}

	m, err := materials.GetMaterial(context.Background(), "cement")
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if m.ReorderPoint == 0 {
		t.Error("reorder point was not persisted during the batch run")
	}
	if m.OptimalOrderQty == 0 {
		t.Error("optimal order qty was not persisted during the batch run")
	}
}

func TestGenerateForecasts_Idempotent(t *testing.T) {
	engine, materials, consumption := newTestEngine(t)
	seedForecastFixture(t, materials, consumption)

	first, err := engine.GenerateForecasts(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := engine.GenerateForecasts(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("forecast runs differ with unchanged inputs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// ghostListingRepo lists one material that no longer exists in the store,
// simulating a deletion racing the batch run.
type ghostListingRepo struct {
	repository.MaterialRepository
	ghost domain.Material
}

func (g *ghostListingRepo) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	listed, err := g.MaterialRepository.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return append(listed, g.ghost), nil
}

func TestGenerateForecasts_SkipsVanishedMaterial(t *testing.T) {
	materials := memory.NewMaterialRepository()
	consumption := memory.NewConsumptionRepository()

	wrapped := &ghostListingRepo{
		MaterialRepository: materials,
		ghost:              domain.Material{ID: "deleted", Name: "Gone", CurrentStock: 5},
	}

	engine := NewEngine(wrapped, consumption, 2)
	engine.now = func() time.Time { return testNow }

	seedMaterial(t, materials, domain.Material{ID: "cement", Name: "Cement", CurrentStock: 300})
	seedDailyConsumption(t, consumption, "cement", 60, 5)

	records, err := engine.GenerateForecasts(context.Background())
	if err != nil {
		t.Fatalf("GenerateForecasts returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (ghost skipped)", len(records))
	}
	if records[0].MaterialID != "cement" {
		t.Errorf("record id = %s, want cement", records[0].MaterialID)
	}
}
