package account

import (
	"context"
	"fmt"

	"github.com/drlist/drlist/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureUser provisions or refreshes the row backing an authenticated
// subject. Role is only seeded on first insert; it is managed through
// SetRole afterwards.
func (s *Service) EnsureUser(ctx context.Context, uid, email, name string) (*User, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid is required")
	}
	u := &User{UID: uid, Email: email, Name: name, Role: auth.RoleCustomer}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, uid string) (*User, error) {
	return s.repo.GetByUID(ctx, uid)
}

// UpdateProfile edits the caller-owned fields. A blank name keeps the
// stored one; phone and address are replaced with whatever was sent.
func (s *Service) UpdateProfile(ctx context.Context, uid, name, phone, address string) (*User, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid is required")
	}
	return s.repo.UpdateProfile(ctx, uid, name, phone, address)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SetRole(ctx context.Context, uid, role string) error {
	if role != auth.RoleCustomer && role != auth.RoleAdmin {
		return fmt.Errorf("invalid role: %s", role)
	}
	return s.repo.SetRole(ctx, uid, role)
}
