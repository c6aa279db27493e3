package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type consumptionRepository struct {
	db *sqlx.DB
}

func NewConsumptionRepository(db *sqlx.DB) repository.ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) ListRecentFirst(ctx context.Context, materialID string, cutoff time.Time) ([]domain.ConsumptionEvent, error) {
	query := `
        SELECT id, material_id, quantity_used, recorded_at, delivery_id
        FROM consumption_events
        WHERE material_id = $1 AND recorded_at >= $2
        ORDER BY recorded_at DESC, id DESC
    `

	var events []domain.ConsumptionEvent
	if err := r.db.SelectContext(ctx, &events, query, materialID, cutoff); err != nil {
		return nil, fmt.Errorf("error listing consumption events for %s: %w", materialID, err)
	}

	return events, nil
}

func (r *consumptionRepository) RecordConsumption(ctx context.Context, e *domain.ConsumptionEvent) error {
	query := `
        INSERT INTO consumption_events (material_id, quantity_used, recorded_at, delivery_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	if err := r.db.GetContext(ctx, &e.ID, query, e.MaterialID, e.QuantityUsed, e.RecordedAt, e.DeliveryID); err != nil {
		return fmt.Errorf("error recording consumption for %s: %w", e.MaterialID, err)
	}

	return nil
}
