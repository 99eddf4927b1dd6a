package patient

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

const patientCols = `id, tenant_id, first_name, last_name, birth_date, gender,
	phone, email, address, allergies, notes, medical_record_number,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (
			id, tenant_id, first_name, last_name, birth_date, gender,
			phone, email, address, allergies, notes, medical_record_number
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		p.ID, p.TenantID, p.FirstName, p.LastName, p.BirthDate, p.Gender,
		p.Phone, p.Email, p.Address, p.Allergies, p.Notes, p.MedicalRecordNumber,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$3, last_name=$4, birth_date=$5, gender=$6,
			phone=$7, email=$8, address=$9, allergies=$10, notes=$11,
			medical_record_number=$12, updated_at=NOW()
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender,
		p.Phone, p.Email, p.Address, p.Allergies, p.Notes, p.MedicalRecordNumber,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE tenant_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	where := `tenant_id = $1 AND (first_name ILIKE $2 OR last_name ILIKE $2 OR medical_record_number ILIKE $2)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE `+where, tenantID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE `+where+`
		 ORDER BY last_name, first_name LIMIT $3 OFFSET $4`, tenantID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) CountCreatedInMonth(ctx context.Context, tenantID uuid.UUID, year, month int) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patient
		WHERE tenant_id = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3`,
		tenantID, year, month).Scan(&count)
	return count, err
}

func (r *repoPG) RecordNumberExists(ctx context.Context, tenantID uuid.UUID, mrn string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE tenant_id = $1 AND medical_record_number = $2)`,
		tenantID, mrn).Scan(&exists)
	return exists, err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender,
		&p.Phone, &p.Email, &p.Address, &p.Allergies, &p.Notes, &p.MedicalRecordNumber,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		err := rows.Scan(
			&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender,
			&p.Phone, &p.Email, &p.Address, &p.Allergies, &p.Notes, &p.MedicalRecordNumber,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, nil
}
