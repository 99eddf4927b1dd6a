package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/pkg/money"
)

// Billing maps to the billing table. PaidTotal and RemainingDue are derived
// from the payment rows on every read and never stored.
type Billing struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	TenantID      uuid.UUID      `db:"tenant_id" json:"tenant_id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	Amount        float64        `db:"amount" json:"amount"`
	Currency      money.Currency `db:"currency" json:"currency"`
	Description   *string        `db:"description" json:"description,omitempty"`
	IssuedAt      time.Time      `db:"issued_at" json:"issued_at"`
	PaidAt        *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`

	PaidTotal    float64 `db:"-" json:"paid_total"`
	RemainingDue float64 `db:"-" json:"remaining_due"`

	Items    []*BillingItem    `db:"-" json:"items,omitempty"`
	Payments []*BillingPayment `db:"-" json:"payments,omitempty"`
}

// BillingItem maps to the billing_item table. UnitPrice and Currency are a
// snapshot taken when the item is created; later acte price changes do not
// affect existing items.
type BillingItem struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	BillingID   uuid.UUID      `db:"billing_id" json:"billing_id"`
	ActeID      *uuid.UUID     `db:"acte_id" json:"acte_id,omitempty"`
	Description string         `db:"description" json:"description"`
	Quantity    int            `db:"quantity" json:"quantity"`
	UnitPrice   float64        `db:"unit_price" json:"unit_price"`
	Currency    money.Currency `db:"currency" json:"currency"`
	Discount    float64        `db:"discount" json:"discount"`
	Total       float64        `db:"total" json:"total"`
}

// ComputeTotal recomputes the line total, clamped at zero.
func (i *BillingItem) ComputeTotal() {
	total := float64(i.Quantity)*i.UnitPrice - i.Discount
	if total < 0 {
		total = 0
	}
	i.Total = total
}

// BillingPayment maps to the billing_payment table. Several payments may
// apply against one invoice.
type BillingPayment struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	BillingID uuid.UUID      `db:"billing_id" json:"billing_id"`
	Amount    float64        `db:"amount" json:"amount"`
	Currency  money.Currency `db:"currency" json:"currency"`
	Method    *string        `db:"method" json:"method,omitempty"`
	PaidAt    time.Time      `db:"paid_at" json:"paid_at"`
}

// ActePrice is the slice of an acte the billing engine needs for price
// snapshots.
type ActePrice struct {
	ID       uuid.UUID
	Amount   float64
	Currency money.Currency
}

// CurrencyTotals is one row of the per-currency aggregate report. Paid is
// summed from payment rows, so partial payments are reflected exactly.
type CurrencyTotals struct {
	Currency money.Currency `json:"currency"`
	Total    float64        `json:"total"`
	Paid     float64        `json:"paid"`
	Unpaid   float64        `json:"unpaid"`
}
