package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
)

// ConsumptionRepository provides in-memory consumption history storage.
type ConsumptionRepository struct {
	mu     sync.RWMutex
	nextID int64
	events map[string][]domain.ConsumptionEvent
}

// NewConsumptionRepository creates a new in-memory consumption repository
func NewConsumptionRepository() *ConsumptionRepository {
	return &ConsumptionRepository{
		nextID: 1,
		events: make(map[string][]domain.ConsumptionEvent),
	}
}

// Verify interface compliance
var _ repository.ConsumptionRepository = (*ConsumptionRepository)(nil)

func (r *ConsumptionRepository) ListRecentFirst(ctx context.Context, materialID string, cutoff time.Time) ([]domain.ConsumptionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.ConsumptionEvent
	for _, e := range r.events[materialID] {
		if !e.RecordedAt.Before(cutoff) {
			result = append(result, e)
		}
	}

	// Most recent first, matching the repository contract
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})

	return result, nil
}

func (r *ConsumptionRepository) RecordConsumption(ctx context.Context, e *domain.ConsumptionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.events[e.MaterialID] = append(r.events[e.MaterialID], *e)

	return nil
}
