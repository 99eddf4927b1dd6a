package inventory

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUnit is applied when an item is created without a unit.
const DefaultUnit = "pcs"

// Item maps to the inventory_item table. SKU is unique per tenant,
// case-insensitively.
type Item struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	SKU          string    `db:"sku" json:"sku"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Quantity     int       `db:"quantity" json:"quantity"`
	Unit         string    `db:"unit" json:"unit"`
	ReorderLevel int       `db:"reorder_level" json:"reorder_level"`
	Location     *string   `db:"location" json:"location,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}
