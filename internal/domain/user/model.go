package user

import (
	"context"
	"time"

	"poll-registry/internal/domain/poll"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the opaque token the poll registry sees for this user.
func (u *User) Identity() poll.Identity {
	return poll.Identity(u.ID)
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
