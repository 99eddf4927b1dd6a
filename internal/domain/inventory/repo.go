package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Item) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, i *Item) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Item, int, error)
	// ListLowStock returns items whose quantity is at or below their
	// reorder level.
	ListLowStock(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error)
	// SKUExists matches case-insensitively, excluding the given item id.
	SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error)
	// AdjustQuantity applies a signed delta and returns the new quantity.
	// The update is atomic and fails when the result would go negative.
	AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) (int, error)
}
