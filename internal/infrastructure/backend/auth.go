package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

var errNoToken = errors.New("auth response carried no token")

// RemoteBackend exchanges credentials with the portal backend.
type RemoteBackend struct {
	api *ApiClient
}

var _ ports.AuthBackend = (*RemoteBackend)(nil)

func NewRemoteBackend(api *ApiClient) *RemoteBackend {
	return &RemoteBackend{api: api}
}

func (b *RemoteBackend) Name() string { return "remote" }

func (b *RemoteBackend) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	res, err := b.api.Login(ctx, username, password)
	if err != nil {
		switch domain.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return toSession(res, username)
}

// Register creates the account and signs in as it. Backends that do not
// return a token on registration are followed by a login.
func (b *RemoteBackend) Register(ctx context.Context, username, password string, role domain.Role) (*domain.Session, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	res, err := b.api.Register(ctx, AccountInput{Username: username, Password: password, Role: role})
	if err != nil {
		if domain.StatusOf(err) == http.StatusConflict {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	if res.BearerToken() == "" {
		return b.Authenticate(ctx, username, password)
	}
	return toSession(res, username)
}

func toSession(res *AuthResponse, username string) (*domain.Session, error) {
	token := res.BearerToken()
	if token == "" {
		return nil, errNoToken
	}

	var user domain.User
	if res.User != nil {
		user = *res.User
	} else {
		u, err := userFromToken(token)
		if err != nil {
			return nil, err
		}
		user = u
	}
	if user.Username == "" {
		user.Username = username
	}
	if !user.Role.Valid() {
		user.Role = domain.RoleFarmer
	}
	return &domain.Session{Token: token, User: user}, nil
}

// userFromToken reads profile claims without verifying the signature; the
// backend that issued the token is the one that will verify it.
func userFromToken(token string) (domain.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.User{}, fmt.Errorf("read token claims: %w", err)
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := claims[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	role, _ := domain.ParseRole(str("role"))
	return domain.User{
		ID:          str("sub", "id", "userId"),
		Username:    str("username", "preferred_username"),
		Role:        role,
		PhoneNumber: str("phoneNumber", "phone_number"),
		Email:       str("email"),
		FullName:    str("fullName", "name"),
	}, nil
}
