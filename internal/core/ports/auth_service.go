package ports

import (
	"context"

	"github.com/agrisure/portal/internal/core/domain"
)

// AuthBackend verifies credentials and creates accounts. The auth service
// owns the session state; backends are stateless.
type AuthBackend interface {
	Name() string
	// Authenticate returns domain.ErrInvalidCredentials on a mismatch.
	Authenticate(ctx context.Context, username, password string) (*domain.Session, error)
	// Register returns domain.ErrUserExists when the username is taken.
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.Session, error)
}

// AuthService is the application-wide authentication state.
type AuthService interface {
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, username, password string, role domain.Role) (bool, error)
	SelectRole(ctx context.Context, role domain.Role) error
	SwitchRole(ctx context.Context, role domain.Role) error
	CurrentUser() (domain.User, bool)
	IsAuthenticated() bool
}
