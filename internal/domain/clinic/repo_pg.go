package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drlist/drlist/internal/platform/db"
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

const visitCols = `id, name, national_id, age, address, visit_type, price, visit_at, created_by, created_at`

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_visits (id, name, national_id, age, address, visit_type, price, visit_at, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		v.ID, v.Name, v.NationalID, v.Age, v.Address, v.VisitType, v.Price, v.VisitAt, v.DoctorID,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM patient_visits WHERE id = $1`, id)
	var v Visit
	if err := scanVisit(row, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_visits WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM patient_visits`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM patient_visits
		ORDER BY visit_at DESC NULLS LAST
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectVisits(rows), total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM patient_visits
		ORDER BY visit_at DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVisits(rows), rows.Err()
}

func collectVisits(rows pgx.Rows) []Visit {
	visits := []Visit{}
	for rows.Next() {
		var v Visit
		if err := scanVisit(rows, &v); err != nil {
			continue
		}
		visits = append(visits, v)
	}
	return visits
}

func scanVisit(row pgx.Row, v *Visit) error {
	return row.Scan(
		&v.ID, &v.Name, &v.NationalID, &v.Age, &v.Address, &v.VisitType,
		&v.Price, &v.VisitAt, &v.DoctorID, &v.CreatedAt,
	)
}
