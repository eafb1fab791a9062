package ports

import (
	"context"

	"github.com/agrisure/portal/internal/core/domain"
)

// UserRepository is the user directory consulted by the mock auth backend.
type UserRepository interface {
	// List returns every user in insertion order.
	List(ctx context.Context) ([]domain.DirectoryUser, error)
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.DirectoryUser, error)
	// Insert returns domain.ErrUserExists when the username is taken.
	Insert(ctx context.Context, user domain.DirectoryUser) error
	// Update replaces the user with the same username.
	Update(ctx context.Context, user domain.DirectoryUser) error
}
