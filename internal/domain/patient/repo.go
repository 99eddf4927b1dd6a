package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error)

	// Record numbering support.
	CountCreatedInMonth(ctx context.Context, tenantID uuid.UUID, year int, month int) (int, error)
	RecordNumberExists(ctx context.Context, tenantID uuid.UUID, mrn string) (bool, error)
}
