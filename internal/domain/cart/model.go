package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a cart row. Product fields are denormalized at add time so the
// cart renders without a catalog join; the merge key is (user, product,
// size) and is enforced by a unique constraint.
type Item struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	ImageURL  string          `db:"image_url" json:"image_url"`
	Size      string          `db:"size" json:"size"`
	Quantity  int             `db:"quantity" json:"quantity"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Total is the cart total: Σ price × quantity. Empty and nil carts total
// zero. Pure decimal arithmetic throughout.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Merge folds an incoming item into items by the (product, size) key: an
// existing row gains the incoming quantity, otherwise the item is appended.
// This is the pure shape of the storage upsert; it never produces a
// duplicate key.
func Merge(items []Item, incoming Item) []Item {
	for i, it := range items {
		if it.ProductID == incoming.ProductID && it.Size == incoming.Size {
			items[i].Quantity += incoming.Quantity
			return items
		}
	}
	return append(items, incoming)
}
