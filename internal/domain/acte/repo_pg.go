package acte

import (
	"context"

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

const acteCols = `id, tenant_id, parent_id, code, name, description, amount, currency, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Acte) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO acte (id, tenant_id, parent_id, code, name, description, amount, currency, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.TenantID, a.ParentID, a.Code, a.Name, a.Description, a.Amount, a.Currency, a.Active,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Acte, error) {
	return scanActe(r.conn(ctx).QueryRow(ctx,
		`SELECT `+acteCols+` FROM acte WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) Update(ctx context.Context, a *Acte) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE acte SET
			parent_id=$3, code=$4, name=$5, description=$6, amount=$7, currency=$8, active=$9,
			updated_at=NOW()
		WHERE tenant_id = $1 AND id = $2`,
		a.TenantID, a.ID, a.ParentID, a.Code, a.Name, a.Description, a.Amount, a.Currency, a.Active,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM acte WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Acte, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM acte WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+acteCols+` FROM acte WHERE tenant_id = $1 ORDER BY code LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var actes []*Acte
	for rows.Next() {
		a, err := collectActe(rows)
		if err != nil {
			return nil, 0, err
		}
		actes = append(actes, a)
	}
	return actes, total, nil
}

func (r *repoPG) ListChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]*Acte, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+acteCols+` FROM acte WHERE tenant_id = $1 AND parent_id = $2 ORDER BY code`,
		tenantID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*Acte
	for rows.Next() {
		a, err := collectActe(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, a)
	}
	return children, nil
}

func (r *repoPG) CodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM acte WHERE tenant_id = $1 AND LOWER(code) = LOWER($2) AND id <> $3
		)`, tenantID, code, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) SumChildren(ctx context.Context, tenantID, parentID uuid.UUID) (float64, int, error) {
	var sum float64
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM acte
		WHERE tenant_id = $1 AND parent_id = $2`, tenantID, parentID).Scan(&sum, &count)
	return sum, count, err
}

func (r *repoPG) UpdateAmount(ctx context.Context, tenantID, id uuid.UUID, amount float64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE acte SET amount = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, amount)
	return err
}

func scanActe(row pgx.Row) (*Acte, error) {
	var a Acte
	err := row.Scan(
		&a.ID, &a.TenantID, &a.ParentID, &a.Code, &a.Name, &a.Description,
		&a.Amount, &a.Currency, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectActe(rows pgx.Rows) (*Acte, error) {
	var a Acte
	err := rows.Scan(
		&a.ID, &a.TenantID, &a.ParentID, &a.Code, &a.Name, &a.Description,
		&a.Amount, &a.Currency, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
