package clinic

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the visit storage boundary.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Visit, int, error)
	ListAll(ctx context.Context) ([]Visit, error)
}
