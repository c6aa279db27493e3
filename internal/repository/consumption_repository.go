// backend-go/internal/repository/consumption_repository.go
package repository

import (
	"context"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
)

// ConsumptionRepository provides read access to the append-only consumption
// history.
type ConsumptionRepository interface {
	// ListRecentFirst returns all consumption events for the material
	// recorded at or after cutoff, ordered by recorded_at descending.
	// The descending order is a contract, not an implementation detail:
	// the trend calculation bisects the returned slice by position and
	// assumes the head is the most recent half.
	ListRecentFirst(ctx context.Context, materialID string, cutoff time.Time) ([]domain.ConsumptionEvent, error)

	RecordConsumption(ctx context.Context, e *domain.ConsumptionEvent) error
}
