// backend-go/internal/repository/material_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/buildstok/inventory/backend-go/internal/domain"
)

// ErrMaterialNotFound is returned when a material id has no matching row.
var ErrMaterialNotFound = errors.New("material not found")

// MaterialRepository provides access to the material catalog. The engine
// reads static parameters and current stock, and writes back only the two
// cached replenishment fields.
type MaterialRepository interface {
	GetMaterial(ctx context.Context, id string) (*domain.Material, error)
	ListMaterials(ctx context.Context) ([]domain.Material, error)

	// SetReorderPoint and SetOptimalOrderQty overwrite the cached fields
	// unconditionally. Both are memoized derivations of the consumption
	// history, so a lost update between concurrent recomputations is
	// benign: the writers converge to the same value.
	SetReorderPoint(ctx context.Context, id string, value float64) error
	SetOptimalOrderQty(ctx context.Context, id string, value float64) error

	CreateMaterial(ctx context.Context, m *domain.Material) error
}
