package ports

import (
	"context"

	"github.com/agrisure/portal/internal/core/domain"
)

// KVStore is a persistent string key/value store. Writes are atomic per key;
// there are no multi-key transactions.
type KVStore interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// TokenStore holds the bearer token and the cached profile of the signed-in user.
type TokenStore interface {
	Token(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	User(ctx context.Context) (*domain.User, bool)
	SetUser(ctx context.Context, user domain.User) error
	SetRole(ctx context.Context, role domain.Role) error
	Clear(ctx context.Context) error
}
