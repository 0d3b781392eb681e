package ports

import (
	"context"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

// Port: a boundary for loading delivery batches and storing their optimized routes.
type BatchRepository interface {
	// List identifiers of all stored batches.
	ListBatchIDs(ctx context.Context) ([]string, error)
	// Retrieve a batch with its stops in caller-supplied order.
	// Returns domain.ErrNotFound when the batch does not exist.
	GetBatch(ctx context.Context, batchID string) (*domain.DeliveryBatch, error)
	// Store the route result against the batch record.
	SaveRoute(ctx context.Context, batchID string, route *domain.RouteResult) error
	// Retrieve the stored route. Returns domain.ErrNotFound when none exists.
	GetRoute(ctx context.Context, batchID string) (*domain.RouteResult, error)
}
