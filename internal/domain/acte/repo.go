package acte

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Acte) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Acte, error)
	Update(ctx context.Context, a *Acte) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Acte, int, error)
	ListChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]*Acte, error)
	CodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error)

	// SumChildren returns the sum of the direct children's amounts and the
	// child count.
	SumChildren(ctx context.Context, tenantID, parentID uuid.UUID) (float64, int, error)
	// UpdateAmount is a targeted amount write that does not touch other
	// columns, used by the pricing rollup.
	UpdateAmount(ctx context.Context, tenantID, id uuid.UUID, amount float64) error
}
