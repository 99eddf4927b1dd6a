package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Tenant maps to the tenant table. Every business entity belongs to exactly
// one tenant; deleting a tenant cascades to all of its data.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
