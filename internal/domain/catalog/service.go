package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drlist/drlist/internal/platform/live"
)

type Service struct {
	repo Repository
	pub  live.Publisher
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetPublisher attaches an optional live feed publisher. When set, every
// write re-publishes the full catalog snapshot.
func (s *Service) SetPublisher(pub live.Publisher) {
	s.pub = pub
}

func (s *Service) CreateProduct(ctx context.Context, p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.publishSnapshot(ctx, p.ID.String())
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProduct(ctx context.Context, p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.publishSnapshot(ctx, p.ID.String())
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishSnapshot(ctx, id.String())
	return nil
}

func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]Product, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListAll returns the full catalog: the source list the pure filter stage
// always runs against.
func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// BrowseProducts applies the filter stage server-side over the full
// catalog.
func (s *Service) BrowseProducts(ctx context.Context, params FilterParams) ([]Product, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Derive(all, params), nil
}

func (s *Service) publishSnapshot(ctx context.Context, resourceID string) {
	if s.pub == nil {
		return
	}
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog snapshot reload failed, skipping publish")
		return
	}
	event, err := live.NewSnapshotEvent(live.TopicCatalog, "products", resourceID, all)
	if err != nil {
		log.Warn().Err(err).Msg("catalog snapshot encode failed")
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("catalog snapshot publish failed")
	}
}
