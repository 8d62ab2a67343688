package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is decimal; float arithmetic is never
// used for money anywhere in the service.
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Brand       string          `db:"brand" json:"brand"`
	Sizes       []string        `db:"sizes" json:"sizes"`
	Colors      []string        `db:"colors" json:"colors"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	InStock     bool            `db:"in_stock" json:"in_stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
