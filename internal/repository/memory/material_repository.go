// Package memory provides in-memory repository implementations used by unit
// tests and the CLI demo mode.
package memory

import (
	"context"
	"sync"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
)

// MaterialRepository provides in-memory material storage. Listing preserves
// insertion order so batch runs over it are deterministic.
type MaterialRepository struct {
	mu        sync.RWMutex
	materials map[string]*domain.Material
	order     []string
}

// NewMaterialRepository creates a new in-memory material repository
func NewMaterialRepository() *MaterialRepository {
	return &MaterialRepository{
		materials: make(map[string]*domain.Material),
	}
}

// Verify interface compliance
var _ repository.MaterialRepository = (*MaterialRepository)(nil)

func (r *MaterialRepository) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.materials[id]
	if !ok {
		return nil, repository.ErrMaterialNotFound
	}

	copied := *m
	return &copied, nil
}

func (r *MaterialRepository) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := make([]domain.Material, 0, len(r.order))
	for _, id := range r.order {
		materials = append(materials, *r.materials[id])
	}

	return materials, nil
}

func (r *MaterialRepository) SetReorderPoint(ctx context.Context, id string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.materials[id]
	if !ok {
		return repository.ErrMaterialNotFound
	}
	m.ReorderPoint = value

	return nil
}

func (r *MaterialRepository) SetOptimalOrderQty(ctx context.Context, id string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.materials[id]
	if !ok {
		return repository.ErrMaterialNotFound
	}
	m.OptimalOrderQty = value

	return nil
}

func (r *MaterialRepository) CreateMaterial(ctx context.Context, m *domain.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.materials[m.ID]; !exists {
		r.order = append(r.order, m.ID)
	}
	copied := *m
	r.materials[m.ID] = &copied

	return nil
}
