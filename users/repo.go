package users

import (
	"context"
	"time"
)

// UserRepo stores local accounts. Lookups of missing users return apperrors.ErrNotFound and
// creating a user whose email is taken returns apperrors.ErrAlreadyExists.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
