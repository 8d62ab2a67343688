package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the order storage boundary. Status history is append-only:
// there is no update or delete for history rows.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, int, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, changedBy string) error
	StatusHistory(ctx context.Context, id uuid.UUID) ([]StatusChange, error)
}
