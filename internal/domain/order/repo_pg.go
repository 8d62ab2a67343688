package order

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

const orderCols = `id, user_id, user_email, status, total, address, payment_method, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	if o.Status == "" {
		o.Status = StatusPending
	}
	q := r.conn(ctx)
	_, err := q.Exec(ctx, `
		INSERT INTO orders (id, user_id, user_email, status, total, address, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.UserID, o.UserEmail, o.Status, o.Total, o.Address, o.Payment,
	)
	if err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.ID = uuid.New()
		it.OrderID = o.ID
		_, err := q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, price, image_url, size, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, it.OrderID, it.ProductID, it.Name, it.Price, it.ImageURL, it.Size, it.Quantity,
		)
		if err != nil {
			return err
		}
	}

	_, err = q.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, changed_by)
		VALUES ($1,$2,$3,$4)`,
		uuid.New(), o.ID, o.Status, o.UserID,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id)
	var o Order
	if err := scanOrder(row, &o); err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	history, err := r.StatusHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	o.StatusHistory = history
	return &o, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectOrders(rows), total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]Order, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows), rows.Err()
}

func (r *repoPG) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows), rows.Err()
}

// UpdateStatus writes the new status and appends a history row in one
// round trip per statement; callers wrap it in a transaction when the two
// must be atomic.
func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status, changedBy string) error {
	q := r.conn(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found")
	}
	_, err = q.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, changed_by)
		VALUES ($1,$2,$3,$4)`,
		uuid.New(), id, status, changedBy,
	)
	return err
}

func (r *repoPG) StatusHistory(ctx context.Context, id uuid.UUID) ([]StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, status, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []StatusChange{}
	for rows.Next() {
		var sc StatusChange
		if err := rows.Scan(&sc.ID, &sc.OrderID, &sc.Status, &sc.ChangedBy, &sc.ChangedAt); err != nil {
			continue
		}
		history = append(history, sc)
	}
	return history, rows.Err()
}

func (r *repoPG) listItems(ctx context.Context, orderID uuid.UUID) ([]LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, product_id, name, price, image_url, size, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []LineItem{}
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price,
			&it.ImageURL, &it.Size, &it.Quantity); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func collectOrders(rows pgx.Rows) []Order {
	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.UserEmail, &o.Status, &o.Total, &o.Address,
		&o.Payment, &o.CreatedAt, &o.UpdatedAt,
	)
}
