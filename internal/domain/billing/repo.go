package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithItems persists the invoice and its items atomically.
	CreateWithItems(ctx context.Context, b *Billing, items []*BillingItem) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Billing, error)
	Update(ctx context.Context, b *Billing) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Billing, int, error)
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID, limit, offset int) ([]*Billing, int, error)

	GetItems(ctx context.Context, billingID uuid.UUID) ([]*BillingItem, error)
	// ReplaceItems deletes the invoice's items and recreates the given set
	// atomically.
	ReplaceItems(ctx context.Context, billingID uuid.UUID, items []*BillingItem) error

	AddPayment(ctx context.Context, p *BillingPayment) error
	GetPayments(ctx context.Context, billingID uuid.UUID) ([]*BillingPayment, error)
	SumPayments(ctx context.Context, billingID uuid.UUID) (float64, error)
	// StampPaid sets paid_at only when it is still null.
	StampPaid(ctx context.Context, billingID uuid.UUID, at time.Time) error

	// ResolveActe looks an acte up by id, then by case-insensitive code or
	// name. Returns (nil, nil) when nothing matches.
	ResolveActe(ctx context.Context, tenantID uuid.UUID, ref ActeRef) (*ActePrice, error)

	// TotalsByCurrency aggregates invoiced/paid/unpaid per currency,
	// scoped to one tenant.
	TotalsByCurrency(ctx context.Context, tenantID uuid.UUID) ([]CurrencyTotals, error)
}
