package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordVisit stores a visit. The visit timestamp is server-assigned; a
// blank price falls back to the visit type's default.
func (s *Service) RecordVisit(ctx context.Context, v *Visit) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.VisitType != VisitCheckup && v.VisitType != VisitFollowup {
		return fmt.Errorf("invalid visit type: %s", v.VisitType)
	}
	if v.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	if v.Price == "" {
		v.Price = DefaultPrice(v.VisitType).String()
	}
	now := s.now()
	v.VisitAt = &now
	return s.repo.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, limit, offset int) ([]Visit, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// BrowseVisits runs the date-range stage over the full visit list.
func (s *Service) BrowseVisits(ctx context.Context, from, to time.Time) ([]Visit, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(all, from, to), nil
}

// GetSummary aggregates today / this week / all time.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sum := Summarize(all, s.now())
	return &sum, nil
}
