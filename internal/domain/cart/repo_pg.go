package cart

import (
	"context"
	"fmt"

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

const itemCols = `id, user_id, product_id, name, price, image_url, size, quantity,
	created_at, updated_at`

// Upsert adds the item, merging quantities into the existing row when the
// (user, product, size) key already exists. Single statement, so two
// concurrent adds for the same key can never produce a duplicate entry.
func (r *repoPG) Upsert(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO cart_items (
			id, user_id, product_id, name, price, image_url, size, quantity
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, product_id, size) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			updated_at = now()
		RETURNING `+itemCols,
		item.ID, item.UserID, item.ProductID, item.Name, item.Price,
		item.ImageURL, item.Size, item.Quantity,
	)
	return scanItem(row, item)
}

func (r *repoPG) SetQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE id = $2 AND user_id = $1`,
		userID, itemID, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item not found")
	}
	return nil
}

func (r *repoPG) Remove(ctx context.Context, userID string, itemID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM cart_items WHERE id = $2 AND user_id = $1`, userID, itemID)
	return err
}

func (r *repoPG) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+itemCols+` FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repoPG) Clear(ctx context.Context, userID string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Name, &it.Price,
		&it.ImageURL, &it.Size, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
	)
}
