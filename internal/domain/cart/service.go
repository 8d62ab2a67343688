package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/drlist/drlist/internal/domain/catalog"
	"github.com/drlist/drlist/internal/platform/live"
)

type Service struct {
	repo    Repository
	catalog catalog.Repository
	pub     live.Publisher
}

func NewService(repo Repository, catalogRepo catalog.Repository) *Service {
	return &Service{repo: repo, catalog: catalogRepo}
}

// SetPublisher attaches an optional live feed publisher. When set, every
// cart write re-publishes the owner's full cart snapshot.
func (s *Service) SetPublisher(pub live.Publisher) {
	s.pub = pub
}

// AddItem resolves the product, denormalizes its fields onto the cart row
// and upserts it. Adding an existing (product, size) key increases the
// stored quantity; quantities are not capped.
func (s *Service) AddItem(ctx context.Context, userID string, productID uuid.UUID, size string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found")
	}
	if size != "" && !hasSize(p, size) {
		return nil, fmt.Errorf("size %s not available for product", size)
	}

	item := &Item{
		UserID:    userID,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Size:      size,
		Quantity:  quantity,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	s.publishSnapshot(ctx, userID, item.ID.String())
	return item, nil
}

// SetQuantity updates a row's quantity. Zero or negative removes the row.
func (s *Service) SetQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) error {
	var err error
	if quantity <= 0 {
		err = s.repo.Remove(ctx, userID, itemID)
	} else {
		err = s.repo.SetQuantity(ctx, userID, itemID, quantity)
	}
	if err != nil {
		return err
	}
	s.publishSnapshot(ctx, userID, itemID.String())
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, itemID); err != nil {
		return err
	}
	s.publishSnapshot(ctx, userID, itemID.String())
	return nil
}

func (s *Service) GetCart(ctx context.Context, userID string) ([]Item, decimal.Decimal, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return items, Total(items), nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return err
	}
	s.publishSnapshot(ctx, userID, "")
	return nil
}

func hasSize(p *catalog.Product, size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func (s *Service) publishSnapshot(ctx context.Context, userID, resourceID string) {
	if s.pub == nil {
		return
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cart snapshot reload failed, skipping publish")
		return
	}
	event, err := live.NewSnapshotEvent(live.CartTopic(userID), "cart_items", resourceID, items)
	if err != nil {
		log.Warn().Err(err).Msg("cart snapshot encode failed")
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("cart snapshot publish failed")
	}
}
