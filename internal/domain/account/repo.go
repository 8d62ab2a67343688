package account

import "context"

// Repository is the user storage boundary. Upsert provisions the row on
// first sight of a subject and refreshes mutable fields after that.
type Repository interface {
	Upsert(ctx context.Context, u *User) error
	GetByUID(ctx context.Context, uid string) (*User, error)
	UpdateProfile(ctx context.Context, uid, name, phone, address string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	SetRole(ctx context.Context, uid, role string) error
}
