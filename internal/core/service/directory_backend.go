package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// Default account created in an empty directory.
const (
	DefaultUsername = "farmer"
	DefaultPassword = "farmer"
	DefaultRole     = domain.RoleFarmer
)

// DirectoryBackend authenticates against the local user directory and signs
// its own session tokens. It never talks to the portal backend.
type DirectoryBackend struct {
	repo     ports.UserRepository
	secret   string
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

var _ ports.AuthBackend = (*DirectoryBackend)(nil)

func NewDirectoryBackend(repo ports.UserRepository, secret string, tokenTTL time.Duration) *DirectoryBackend {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &DirectoryBackend{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (b *DirectoryBackend) Name() string { return "mock" }

// Seed inserts the default farmer account when the directory is empty.
func (b *DirectoryBackend) Seed(ctx context.Context) error {
	users, err := b.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	_, err = b.create(ctx, DefaultUsername, DefaultPassword, DefaultRole)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func (b *DirectoryBackend) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := b.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return b.session(user.Profile())
}

// Register appends a new user. The directory is left untouched when the
// username is taken.
func (b *DirectoryBackend) Register(ctx context.Context, username, password string, role domain.Role) (*domain.Session, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := b.create(ctx, username, password, role)
	if err != nil {
		return nil, err
	}
	return b.session(user.Profile())
}

func (b *DirectoryBackend) create(ctx context.Context, username, password string, role domain.Role) (*domain.DirectoryUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return nil, err
	}

	user := domain.DirectoryUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    b.now().UTC(),
	}
	if err := b.repo.Insert(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *DirectoryBackend) session(user domain.User) (*domain.Session, error) {
	token, err := b.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, User: user}, nil
}

func (b *DirectoryBackend) generateToken(user domain.User) (string, error) {
	now := b.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(b.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(b.secret))
}
