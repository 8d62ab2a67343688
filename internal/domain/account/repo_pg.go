package account

import (
	"context"
	"fmt"

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

const userCols = `uid, email, name, phone, address, role, created_at, updated_at`

// Upsert provisions the row or refreshes email/name from the token. Blank
// incoming values never clobber what the user already stored.
func (r *repoPG) Upsert(ctx context.Context, u *User) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (uid, email, name, role)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (uid) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			name  = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			updated_at = now()
		RETURNING `+userCols,
		u.UID, u.Email, u.Name, u.Role,
	)
	return scanUser(row, u)
}

// UpdateProfile writes the caller-editable fields. Blank name is treated
// as "keep"; phone and address may be cleared.
func (r *repoPG) UpdateProfile(ctx context.Context, uid, name, phone, address string) (*User, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			phone = $3,
			address = $4,
			updated_at = now()
		WHERE uid = $1
		RETURNING `+userCols, uid, name, phone, address)
	var u User
	if err := scanUser(row, &u); err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &u, nil
}

func (r *repoPG) GetByUID(ctx context.Context, uid string) (*User, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE uid = $1`, uid)
	var u User
	if err := scanUser(row, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+` FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *repoPG) SetRole(ctx context.Context, uid, role string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE uid = $1`, uid, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.UID, &u.Email, &u.Name, &u.Phone, &u.Address, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}
