package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the catalog storage boundary.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Product, int, error)
	ListAll(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
}
