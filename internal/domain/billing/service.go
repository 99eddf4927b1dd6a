package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/pkg/money"
)

// ItemInput is one incoming invoice line. UnitPrice nil means "snapshot the
// price from the referenced acte".
type ItemInput struct {
	Acte        ActeRef        `json:"acte"`
	Description string         `json:"description"`
	Quantity    int            `json:"quantity"`
	UnitPrice   *float64       `json:"unit_price"`
	Currency    money.Currency `json:"currency"`
	Discount    float64        `json:"discount"`
}

// CreateInput is the invoice creation payload. The top-level Acte/Quantity
// pair is the single-item shorthand, used when Items is empty.
type CreateInput struct {
	PatientID     uuid.UUID      `json:"patient_id"`
	AppointmentID *uuid.UUID     `json:"appointment_id"`
	Amount        *float64       `json:"amount"`
	Currency      money.Currency `json:"currency"`
	Description   *string        `json:"description"`
	Items         []ItemInput    `json:"items"`

	Acte     ActeRef `json:"acte"`
	Quantity int     `json:"quantity"`
}

// UpdateInput is the invoice update payload. Items nil leaves the existing
// item set untouched; items present replaces it entirely.
type UpdateInput struct {
	PatientID     *uuid.UUID     `json:"patient_id"`
	AppointmentID *uuid.UUID     `json:"appointment_id"`
	Amount        *float64       `json:"amount"`
	Currency      money.Currency `json:"currency"`
	Description   *string        `json:"description"`
	Items         []ItemInput    `json:"items"`
}

// PaymentInput is the add_payment payload.
type PaymentInput struct {
	Amount   float64        `json:"amount"`
	Currency money.Currency `json:"currency"`
	Method   *string        `json:"method"`
}

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// CreateBilling builds and persists an invoice. Item acte references are
// resolved, unit prices snapshotted, totals computed, and a missing invoice
// amount defaults to the sum of item totals.
func (s *Service) CreateBilling(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*Billing, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.Currency == "" {
		in.Currency = money.Default
	}
	if !money.Valid(in.Currency) {
		return nil, fmt.Errorf("unsupported currency: %s", in.Currency)
	}

	inputs := in.Items
	if len(inputs) == 0 && !in.Acte.IsZero() {
		inputs = []ItemInput{{
			Acte:        in.Acte,
			Quantity:    in.Quantity,
			Description: derefStr(in.Description),
		}}
	}

	items, itemsTotal, err := s.buildItems(ctx, tenantID, in.Currency, inputs)
	if err != nil {
		return nil, err
	}

	b := &Billing{
		TenantID:      tenantID,
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		Currency:      in.Currency,
		Description:   in.Description,
	}
	if in.Amount != nil {
		b.Amount = *in.Amount
	} else {
		b.Amount = itemsTotal
	}

	if err := s.repo.CreateWithItems(ctx, b, items); err != nil {
		return nil, err
	}
	b.Items = items
	b.RemainingDue = b.Amount
	return b, nil
}

// buildItems resolves acte references and computes line totals for a batch
// of incoming items.
func (s *Service) buildItems(ctx context.Context, tenantID uuid.UUID, invoiceCurrency money.Currency, inputs []ItemInput) ([]*BillingItem, float64, error) {
	var items []*BillingItem
	var sum float64

	for idx, in := range inputs {
		item := &BillingItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Discount:    in.Discount,
			Currency:    in.Currency,
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		if in.Discount < 0 {
			return nil, 0, fmt.Errorf("item %d: discount must not be negative", idx)
		}

		if !in.Acte.IsZero() {
			price, err := s.repo.ResolveActe(ctx, tenantID, in.Acte)
			if err != nil {
				return nil, 0, err
			}
			if price == nil {
				return nil, 0, fmt.Errorf("item %d: acte not found", idx)
			}
			item.ActeID = &price.ID
			if in.UnitPrice == nil {
				// Price snapshot: later acte changes do not touch this item.
				item.UnitPrice = price.Amount
				if item.Currency == "" {
					item.Currency = price.Currency
				}
			}
		}
		if in.UnitPrice != nil {
			if *in.UnitPrice < 0 {
				return nil, 0, fmt.Errorf("item %d: unit_price must not be negative", idx)
			}
			item.UnitPrice = *in.UnitPrice
		} else if item.ActeID == nil {
			return nil, 0, fmt.Errorf("item %d: unit_price or acte reference is required", idx)
		}

		if item.Currency == "" {
			item.Currency = invoiceCurrency
		}
		if !money.Valid(item.Currency) {
			return nil, 0, fmt.Errorf("item %d: unsupported currency: %s", idx, item.Currency)
		}

		item.ComputeTotal()
		sum += item.Total
		items = append(items, item)
	}
	return items, sum, nil
}

// UpdateBilling applies a partial update. When items are supplied the whole
// item set is replaced; when the amount is omitted alongside new items it is
// recomputed from them.
func (s *Service) UpdateBilling(ctx context.Context, tenantID, id uuid.UUID, in UpdateInput) (*Billing, error) {
	b, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("billing not found: %w", err)
	}

	if in.PatientID != nil {
		b.PatientID = *in.PatientID
	}
	if in.AppointmentID != nil {
		b.AppointmentID = in.AppointmentID
	}
	if in.Currency != "" {
		if !money.Valid(in.Currency) {
			return nil, fmt.Errorf("unsupported currency: %s", in.Currency)
		}
		b.Currency = in.Currency
	}
	if in.Description != nil {
		b.Description = in.Description
	}

	if in.Items != nil {
		items, itemsTotal, err := s.buildItems(ctx, tenantID, b.Currency, in.Items)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceItems(ctx, b.ID, items); err != nil {
			return nil, err
		}
		if in.Amount == nil {
			b.Amount = itemsTotal
		}
	}
	if in.Amount != nil {
		b.Amount = *in.Amount
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.GetBilling(ctx, tenantID, id)
}

// AddPayment records a payment and stamps paid_at once cumulative payments
// reach the invoice amount. Totals are always recomputed from the payment
// rows, so concurrent submissions cannot diverge.
func (s *Service) AddPayment(ctx context.Context, tenantID, id uuid.UUID, in PaymentInput) (*Billing, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	b, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("billing not found: %w", err)
	}

	currency := in.Currency
	if currency == "" {
		currency = b.Currency
	}
	if !money.Valid(currency) {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	payment := &BillingPayment{
		BillingID: b.ID,
		Amount:    in.Amount,
		Currency:  currency,
		Method:    in.Method,
	}
	if err := s.repo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	paid, err := s.repo.SumPayments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if paid >= b.Amount && b.PaidAt == nil {
		if err := s.repo.StampPaid(ctx, b.ID, s.now()); err != nil {
			s.log.Warn().Err(err).Str("billing_id", b.ID.String()).Msg("paid_at stamp failed")
		}
	}

	return s.GetBilling(ctx, tenantID, id)
}

// GetBilling loads an invoice with its items, payments, and derived totals.
func (s *Service) GetBilling(ctx context.Context, tenantID, id uuid.UUID) (*Billing, error) {
	b, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if b.Items, err = s.repo.GetItems(ctx, b.ID); err != nil {
		return nil, err
	}
	if b.Payments, err = s.repo.GetPayments(ctx, b.ID); err != nil {
		return nil, err
	}
	for _, p := range b.Payments {
		b.PaidTotal += p.Amount
	}
	b.RemainingDue = b.Amount - b.PaidTotal
	return b, nil
}

func (s *Service) DeleteBilling(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

// ListBillings returns invoices with derived totals filled in.
func (s *Service) ListBillings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Billing, int, error) {
	billings, total, err := s.repo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.fillDerived(ctx, billings); err != nil {
		return nil, 0, err
	}
	return billings, total, nil
}

func (s *Service) ListBillingsByPatient(ctx context.Context, tenantID, patientID uuid.UUID, limit, offset int) ([]*Billing, int, error) {
	billings, total, err := s.repo.ListByPatient(ctx, tenantID, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.fillDerived(ctx, billings); err != nil {
		return nil, 0, err
	}
	return billings, total, nil
}

func (s *Service) fillDerived(ctx context.Context, billings []*Billing) error {
	for _, b := range billings {
		paid, err := s.repo.SumPayments(ctx, b.ID)
		if err != nil {
			return err
		}
		b.PaidTotal = paid
		b.RemainingDue = b.Amount - paid
	}
	return nil
}

// Totals reports the per-currency invoiced/paid/unpaid aggregates for a
// tenant. Currencies with no invoices are reported as zero rows.
func (s *Service) Totals(ctx context.Context, tenantID uuid.UUID) ([]CurrencyTotals, error) {
	rows, err := s.repo.TotalsByCurrency(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	byCurrency := make(map[money.Currency]CurrencyTotals, len(rows))
	for _, row := range rows {
		byCurrency[row.Currency] = row
	}
	totals := make([]CurrencyTotals, 0, len(money.Currencies))
	for _, c := range money.Currencies {
		row, ok := byCurrency[c]
		if !ok {
			row = CurrencyTotals{Currency: c}
		}
		totals = append(totals, row)
	}
	return totals, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
