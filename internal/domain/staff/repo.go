package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Staff, error)
	// GetByAccount is identity-keyed, not tenant-scoped: it backs role
	// resolution and tenant fallback for the authenticated actor.
	// Returns (nil, nil) when the account has no staff link.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Staff, int, error)
}
