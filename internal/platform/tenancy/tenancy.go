// Package tenancy resolves the tenant a request operates on. Resolution is
// layered: an explicit slug (X-Tenant-Slug header or tenant query parameter)
// wins, then the tenant linked to the authenticated actor's staff record.
// Requests that match neither proceed with no tenant; writes that need one
// are rejected downstream.
package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// Tenant is the resolved tenant identity carried on the request context.
type Tenant struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// Source records which layer produced the resolution.
type Source string

const (
	SourceNone  Source = "none"
	SourceSlug  Source = "slug"
	SourceStaff Source = "staff"
)

// Resolution is the outcome of tenant resolution for one request.
type Resolution struct {
	Tenant *Tenant
	Source Source
}

// SlugLookup finds a tenant by slug. A nil tenant with nil error means the
// slug is unknown, which is treated as absent rather than a failure.
type SlugLookup func(ctx context.Context, slug string) (*Tenant, error)

// StaffTenantLookup finds the tenant of the staff record linked to an
// account, if any.
type StaffTenantLookup func(ctx context.Context, accountID uuid.UUID) (*Tenant, error)

type contextKey struct{}

// WithResolution attaches a resolution to the context.
func WithResolution(ctx context.Context, r Resolution) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// FromContext returns the resolution for the request, or an empty resolution
// when the middleware did not run.
func FromContext(ctx context.Context) Resolution {
	if r, ok := ctx.Value(contextKey{}).(Resolution); ok {
		return r
	}
	return Resolution{Source: SourceNone}
}

// TenantID is a convenience accessor; ok is false when no tenant resolved.
func TenantID(ctx context.Context) (uuid.UUID, bool) {
	r := FromContext(ctx)
	if r.Tenant == nil {
		return uuid.Nil, false
	}
	return r.Tenant.ID, true
}
