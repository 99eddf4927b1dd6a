package acte

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/pkg/money"
)

// Acte maps to the acte table: a billable procedure definition, optionally
// nested one level under a parent acte. A parent's amount tracks the sum of
// its direct children's amounts.
type Acte struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	TenantID    uuid.UUID      `db:"tenant_id" json:"tenant_id"`
	ParentID    *uuid.UUID     `db:"parent_id" json:"parent_id,omitempty"`
	Code        string         `db:"code" json:"code"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Amount      float64        `db:"amount" json:"amount"`
	Currency    money.Currency `db:"currency" json:"currency"`
	Active      bool           `db:"active" json:"active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
