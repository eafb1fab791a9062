// Package kvrepo stores the user directory as a single JSON document in a
// ports.KVStore, the layout the browser portal used under "auth_users".
package kvrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// UsersKey is the storage key holding the whole directory.
const UsersKey = "auth_users"

// UserRepository implements ports.UserRepository. Every write rewrites the
// whole collection; the mutex serialises read-modify-write cycles within
// this process.
type UserRepository struct {
	store ports.KVStore
	mu    sync.Mutex
}

func NewUserRepository(store ports.KVStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.DirectoryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.DirectoryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Insert(ctx context.Context, user domain.DirectoryUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	return r.save(ctx, append(users, user))
}

func (r *UserRepository) Update(ctx context.Context, user domain.DirectoryUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == user.Username {
			users[i] = user
			return r.save(ctx, users)
		}
	}
	return domain.ErrUserNotFound
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *UserRepository) load(ctx context.Context) ([]domain.DirectoryUser, error) {
	raw, ok, err := r.store.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var users []domain.DirectoryUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	return users, nil
}

func (r *UserRepository) save(ctx context.Context, users []domain.DirectoryUser) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	if err := r.store.Set(ctx, UsersKey, string(raw)); err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	return nil
}
