package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billingCols = `id, tenant_id, patient_id, appointment_id, amount, currency,
	description, issued_at, paid_at, created_at, updated_at`

const itemCols = `id, billing_id, acte_id, description, quantity, unit_price, currency, discount, total`

func (r *repoPG) CreateWithItems(ctx context.Context, b *Billing, items []*BillingItem) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		b.ID = uuid.New()
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO billing (id, tenant_id, patient_id, appointment_id, amount, currency, description, issued_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,COALESCE($8, NOW()))
			RETURNING issued_at, created_at, updated_at`,
			b.ID, b.TenantID, b.PatientID, b.AppointmentID, b.Amount, b.Currency, b.Description, nullableTime(b.IssuedAt),
		).Scan(&b.IssuedAt, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}
		return r.insertItems(ctx, b.ID, items)
	})
}

func (r *repoPG) insertItems(ctx context.Context, billingID uuid.UUID, items []*BillingItem) error {
	for _, item := range items {
		item.ID = uuid.New()
		item.BillingID = billingID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO billing_item (id, billing_id, acte_id, description, quantity, unit_price, currency, discount, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, item.BillingID, item.ActeID, item.Description,
			item.Quantity, item.UnitPrice, item.Currency, item.Discount, item.Total,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Billing, error) {
	return scanBilling(r.conn(ctx).QueryRow(ctx,
		`SELECT `+billingCols+` FROM billing WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) Update(ctx context.Context, b *Billing) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing SET
			patient_id=$3, appointment_id=$4, amount=$5, currency=$6, description=$7, updated_at=NOW()
		WHERE tenant_id = $1 AND id = $2`,
		b.TenantID, b.ID, b.PatientID, b.AppointmentID, b.Amount, b.Currency, b.Description,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Billing, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM billing WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billingCols+` FROM billing WHERE tenant_id = $1
		 ORDER BY issued_at DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectBillings(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID, limit, offset int) ([]*Billing, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM billing WHERE tenant_id = $1 AND patient_id = $2`,
		tenantID, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billingCols+` FROM billing WHERE tenant_id = $1 AND patient_id = $2
		 ORDER BY issued_at DESC LIMIT $3 OFFSET $4`, tenantID, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectBillings(rows, total)
}

func (r *repoPG) GetItems(ctx context.Context, billingID uuid.UUID) ([]*BillingItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM billing_item WHERE billing_id = $1 ORDER BY id`, billingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*BillingItem
	for rows.Next() {
		var i BillingItem
		err := rows.Scan(&i.ID, &i.BillingID, &i.ActeID, &i.Description,
			&i.Quantity, &i.UnitPrice, &i.Currency, &i.Discount, &i.Total)
		if err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	return items, nil
}

func (r *repoPG) ReplaceItems(ctx context.Context, billingID uuid.UUID, items []*BillingItem) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM billing_item WHERE billing_id = $1`, billingID); err != nil {
			return err
		}
		return r.insertItems(ctx, billingID, items)
	})
}

func (r *repoPG) AddPayment(ctx context.Context, p *BillingPayment) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO billing_payment (id, billing_id, amount, currency, method)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING paid_at`,
		p.ID, p.BillingID, p.Amount, p.Currency, p.Method,
	).Scan(&p.PaidAt)
}

func (r *repoPG) GetPayments(ctx context.Context, billingID uuid.UUID) ([]*BillingPayment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, billing_id, amount, currency, method, paid_at
		FROM billing_payment WHERE billing_id = $1 ORDER BY paid_at`, billingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*BillingPayment
	for rows.Next() {
		var p BillingPayment
		if err := rows.Scan(&p.ID, &p.BillingID, &p.Amount, &p.Currency, &p.Method, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, nil
}

func (r *repoPG) SumPayments(ctx context.Context, billingID uuid.UUID) (float64, error) {
	var sum float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM billing_payment WHERE billing_id = $1`,
		billingID).Scan(&sum)
	return sum, err
}

func (r *repoPG) StampPaid(ctx context.Context, billingID uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE billing SET paid_at = $2, updated_at = NOW() WHERE id = $1 AND paid_at IS NULL`,
		billingID, at)
	return err
}

func (r *repoPG) ResolveActe(ctx context.Context, tenantID uuid.UUID, ref ActeRef) (*ActePrice, error) {
	var row pgx.Row
	switch ref.Kind {
	case ActeRefByID:
		row = r.conn(ctx).QueryRow(ctx,
			`SELECT id, amount, currency FROM acte WHERE tenant_id = $1 AND id = $2`,
			tenantID, ref.ID)
	case ActeRefByCode, ActeRefByName:
		row = r.conn(ctx).QueryRow(ctx, `
			SELECT id, amount, currency FROM acte
			WHERE tenant_id = $1 AND (LOWER(code) = LOWER($2) OR LOWER(name) = LOWER($2))
			ORDER BY code LIMIT 1`,
			tenantID, ref.Text)
	default:
		return nil, nil
	}

	var p ActePrice
	if err := row.Scan(&p.ID, &p.Amount, &p.Currency); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) TotalsByCurrency(ctx context.Context, tenantID uuid.UUID) ([]CurrencyTotals, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.currency,
		       COALESCE(SUM(b.amount), 0) AS total,
		       COALESCE(SUM(p.paid), 0)   AS paid
		FROM billing b
		LEFT JOIN (
			SELECT billing_id, SUM(amount) AS paid
			FROM billing_payment GROUP BY billing_id
		) p ON p.billing_id = b.id
		WHERE b.tenant_id = $1
		GROUP BY b.currency
		ORDER BY b.currency`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CurrencyTotals
	for rows.Next() {
		var t CurrencyTotals
		if err := rows.Scan(&t.Currency, &t.Total, &t.Paid); err != nil {
			return nil, err
		}
		t.Unpaid = t.Total - t.Paid
		totals = append(totals, t)
	}
	return totals, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanBilling(row pgx.Row) (*Billing, error) {
	var b Billing
	err := row.Scan(
		&b.ID, &b.TenantID, &b.PatientID, &b.AppointmentID, &b.Amount, &b.Currency,
		&b.Description, &b.IssuedAt, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBillings(rows pgx.Rows, total int) ([]*Billing, int, error) {
	var billings []*Billing
	for rows.Next() {
		var b Billing
		err := rows.Scan(
			&b.ID, &b.TenantID, &b.PatientID, &b.AppointmentID, &b.Amount, &b.Currency,
			&b.Description, &b.IssuedAt, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		billings = append(billings, &b)
	}
	return billings, total, nil
}
