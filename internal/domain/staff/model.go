package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// Staff maps to the staff table. AccountID links the record to a login
// identity; staff without one are addressable only internally.
type Staff struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TenantID  uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	AccountID *uuid.UUID `db:"account_id" json:"account_id,omitempty"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Role      auth.Role  `db:"role" json:"role"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
