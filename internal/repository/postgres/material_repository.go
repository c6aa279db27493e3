package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type materialRepository struct {
	db *sqlx.DB
}

func NewMaterialRepository(db *sqlx.DB) repository.MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	query := `
        SELECT
            id, name, unit, current_stock, min_stock, critical_threshold,
            lead_time_days, unit_price, reorder_point, optimal_order_qty,
            created_at, updated_at
        FROM materials
        WHERE id = $1
    `

	var m domain.Material
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("error getting material %s: %w", id, err)
	}

	return &m, nil
}

func (r *materialRepository) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	query := `
        SELECT
            id, name, unit, current_stock, min_stock, critical_threshold,
            lead_time_days, unit_price, reorder_point, optimal_order_qty,
            created_at, updated_at
        FROM materials
        ORDER BY name, id
    `

	var materials []domain.Material
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, fmt.Errorf("error listing materials: %w", err)
	}

	return materials, nil
}

func (r *materialRepository) SetReorderPoint(ctx context.Context, id string, value float64) error {
	return r.setCachedField(ctx, "reorder_point", id, value)
}

func (r *materialRepository) SetOptimalOrderQty(ctx context.Context, id string, value float64) error {
	return r.setCachedField(ctx, "optimal_order_qty", id, value)
}

func (r *materialRepository) setCachedField(ctx context.Context, column, id string, value float64) error {
	// column is one of two constants above, never user input
	query := fmt.Sprintf(`UPDATE materials SET %s = $1, updated_at = NOW() WHERE id = $2`, column)

	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("error updating %s for material %s: %w", column, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update of %s for material %s: %w", column, id, err)
	}
	if rows == 0 {
		return repository.ErrMaterialNotFound
	}

	return nil
}

func (r *materialRepository) CreateMaterial(ctx context.Context, m *domain.Material) error {
	query := `
        INSERT INTO materials (
            id, name, unit, current_stock, min_stock, critical_threshold,
            lead_time_days, unit_price, reorder_point, optimal_order_qty,
            created_at, updated_at
        ) VALUES (
            :id, :name, :unit, :current_stock, :min_stock, :critical_threshold,
            :lead_time_days, :unit_price, :reorder_point, :optimal_order_qty,
            NOW(), NOW()
        )
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            unit = EXCLUDED.unit,
            current_stock = EXCLUDED.current_stock,
            min_stock = EXCLUDED.min_stock,
            critical_threshold = EXCLUDED.critical_threshold,
            lead_time_days = EXCLUDED.lead_time_days,
            unit_price = EXCLUDED.unit_price,
            updated_at = NOW()
    `

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("error creating material %s: %w", m.ID, err)
	}

	return nil
}
