package user

import "context"

// Repository exposes persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) (bool, error)
}
