// Package session keeps the backend bearer token and the cached profile of
// the signed-in user in a persistent key/value store.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// Storage keys. The names match what the browser portal wrote to local storage.
const (
	KeyToken       = "token"
	KeyUser        = "user"
	KeyRole        = "role"
	KeyUserID      = "userId"
	KeyPhoneNumber = "phoneNumber"
	KeyEmail       = "email"
)

// sessionKeys is the removal order used by Clear.
var sessionKeys = []string{KeyToken, KeyUser, KeyRole, KeyUserID, KeyPhoneNumber, KeyEmail}

// TokenStore implements ports.TokenStore.
type TokenStore struct {
	kv  ports.KVStore
	log zerolog.Logger
}

func NewTokenStore(kv ports.KVStore, log zerolog.Logger) *TokenStore {
	return &TokenStore{kv: kv, log: log.With().Str("component", "token_store").Logger()}
}

// Token never fails: a storage error is logged and reported as "no token".
func (s *TokenStore) Token(ctx context.Context) (string, bool) {
	tok, ok, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("read token failed")
		return "", false
	}
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, KeyToken, token)
}

// SetUser caches the profile under "user" and its individual fields under
// their own keys. Empty optional fields remove stale values.
func (s *TokenStore) SetUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(raw)); err != nil {
		return err
	}

	fields := []struct{ key, value string }{
		{KeyRole, string(user.Role)},
		{KeyUserID, user.ID},
		{KeyPhoneNumber, user.PhoneNumber},
		{KeyEmail, user.Email},
	}
	for _, f := range fields {
		if f.value == "" {
			if err := s.kv.Delete(ctx, f.key); err != nil {
				return err
			}
			continue
		}
		if err := s.kv.Set(ctx, f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *TokenStore) User(ctx context.Context) (*domain.User, bool) {
	raw, ok, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		s.log.Warn().Err(err).Msg("read user failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn().Err(err).Msg("cached user is not valid JSON")
		return nil, false
	}
	return &u, true
}

// SetRole rewrites the cached role, inside the user document as well when
// one is present.
func (s *TokenStore) SetRole(ctx context.Context, role domain.Role) error {
	if u, ok := s.User(ctx); ok {
		u.Role = role
		raw, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		if err := s.kv.Set(ctx, KeyUser, string(raw)); err != nil {
			return err
		}
	}
	return s.kv.Set(ctx, KeyRole, string(role))
}

// Clear removes every session key in turn. It is not atomic across keys.
func (s *TokenStore) Clear(ctx context.Context) error {
	for _, k := range sessionKeys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}
