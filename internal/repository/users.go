package repository

import (
	"context"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// UserQuery paginates and filters user listing.
type UserQuery struct {
	RegisteredFrom *time.Time
	RegisteredTo   *time.Time
	Limit          int
	Offset         int
}

// UserStore provides read access to the platform user profile records.
// The lifecycle core never writes user records.
type UserStore interface {
	// Get returns the user or domain.ErrUserNotFound.
	Get(ctx context.Context, userID string) (*domain.User, error)

	// List returns users ordered by registration time ascending.
	List(ctx context.Context, q UserQuery) ([]domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}
