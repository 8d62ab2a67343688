package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the cart storage boundary. Upsert must merge atomically on
// the (user, product, size) key.
type Repository interface {
	Upsert(ctx context.Context, item *Item) error
	SetQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID string, itemID uuid.UUID) error
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	Clear(ctx context.Context, userID string) error
}
