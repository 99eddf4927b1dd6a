package inventory

import (
	"context"
	"fmt"

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

const itemCols = `id, tenant_id, sku, name, description, quantity, unit,
	reorder_level, location, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, i *Item) error {
	i.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO inventory_item (
			id, tenant_id, sku, name, description, quantity, unit, reorder_level, location
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		i.ID, i.TenantID, i.SKU, i.Name, i.Description, i.Quantity, i.Unit,
		i.ReorderLevel, i.Location,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) Update(ctx context.Context, i *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE inventory_item SET
			sku=$3, name=$4, description=$5, quantity=$6, unit=$7,
			reorder_level=$8, location=$9, updated_at=NOW()
		WHERE tenant_id = $1 AND id = $2`,
		i.TenantID, i.ID, i.SKU, i.Name, i.Description, i.Quantity, i.Unit,
		i.ReorderLevel, i.Location,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM inventory_item WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_item WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE tenant_id = $1
		 ORDER BY name LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectItems(rows, total)
}

func (r *repoPG) Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Item, int, error) {
	pattern := "%" + query + "%"
	where := `tenant_id = $1 AND (sku ILIKE $2 OR name ILIKE $2 OR location ILIKE $2)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_item WHERE `+where, tenantID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE `+where+`
		 ORDER BY name LIMIT $3 OFFSET $4`, tenantID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectItems(rows, total)
}

func (r *repoPG) ListLowStock(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	where := `tenant_id = $1 AND quantity <= reorder_level`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_item WHERE `+where, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE `+where+`
		 ORDER BY quantity, name LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectItems(rows, total)
}

func (r *repoPG) SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM inventory_item
			WHERE tenant_id = $1 AND LOWER(sku) = LOWER($2) AND id <> $3
		)`, tenantID, sku, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) (int, error) {
	var quantity int
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE inventory_item
		SET quantity = quantity + $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND quantity + $3 >= 0
		RETURNING quantity`,
		tenantID, id, delta).Scan(&quantity)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("item not found or quantity would go negative")
	}
	return quantity, err
}

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(
		&i.ID, &i.TenantID, &i.SKU, &i.Name, &i.Description, &i.Quantity, &i.Unit,
		&i.ReorderLevel, &i.Location, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collectItems(rows pgx.Rows, total int) ([]*Item, int, error) {
	var items []*Item
	for rows.Next() {
		var i Item
		err := rows.Scan(
			&i.ID, &i.TenantID, &i.SKU, &i.Name, &i.Description, &i.Quantity, &i.Unit,
			&i.ReorderLevel, &i.Location, &i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &i)
	}
	return items, total, nil
}
