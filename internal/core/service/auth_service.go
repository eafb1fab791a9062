package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/api/metrics"
	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// KeyAuthUser holds the signed-in user between restarts.
const KeyAuthUser = "auth_user"

// AuthService holds the process-wide authentication state. Credential checks
// are delegated to the configured backend; the service owns persistence of
// the current user and the token store.
type AuthService struct {
	backend ports.AuthBackend
	kv      ports.KVStore
	tokens  ports.TokenStore
	log     zerolog.Logger

	mu   sync.RWMutex
	user *domain.User
	// token is the bearer token of the current session, used to tell a
	// current expiry from a stale one.
	token string
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService restores the previous session from kv before returning.
func NewAuthService(ctx context.Context, backend ports.AuthBackend, kv ports.KVStore, tokens ports.TokenStore, log zerolog.Logger) *AuthService {
	s := &AuthService{
		backend: backend,
		kv:      kv,
		tokens:  tokens,
		log:     log.With().Str("component", "auth").Str("backend", backend.Name()).Logger(),
	}
	s.restore(ctx)
	return s
}

func (s *AuthService) restore(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, KeyAuthUser)
	if err != nil {
		s.log.Warn().Err(err).Msg("restore session failed, starting anonymous")
		return
	}
	if !ok {
		return
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Username == "" || !u.Role.Valid() {
		s.log.Warn().Msg("persisted session is unreadable, starting anonymous")
		return
	}
	s.user = &u
	s.token, _ = s.tokens.Token(ctx)
	s.log.Info().Str("username", u.Username).Msg("session restored")
}

// Login reports false when the credentials are rejected; the state is then
// left as it was. Errors are reserved for infrastructure failures.
func (s *AuthService) Login(ctx context.Context, username, password string) (bool, error) {
	sess, err := s.backend.Authenticate(ctx, username, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		s.record("login", "rejected")
		s.log.Info().Str("username", username).Msg("login rejected")
		return false, nil
	}
	if err != nil {
		s.record("login", "error")
		return false, err
	}

	if err := s.establish(ctx, sess); err != nil {
		s.record("login", "error")
		return false, err
	}
	s.record("login", "success")
	return true, nil
}

// Logout always ends anonymous, even when clearing storage fails. Calling it
// again is harmless.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""
	err := errors.Join(
		s.kv.Delete(ctx, KeyAuthUser),
		s.tokens.Clear(ctx),
	)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Register reports false when the username is already taken.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	if !role.Valid() {
		return false, domain.ErrInvalidRole
	}

	sess, err := s.backend.Register(ctx, username, password, role)
	if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrInvalidCredentials) {
		s.record("register", "rejected")
		return false, nil
	}
	if err != nil {
		s.record("register", "error")
		return false, err
	}

	if err := s.establish(ctx, sess); err != nil {
		s.record("register", "error")
		return false, err
	}
	s.record("register", "success")
	return true, nil
}

// SelectRole changes the role of the signed-in user. It does nothing while
// anonymous.
func (s *AuthService) SelectRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	updated := *s.user
	updated.Role = role
	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	if err := s.tokens.SetRole(ctx, role); err != nil {
		return err
	}
	s.user = &updated
	return nil
}

// SwitchRole is SelectRole.
func (s *AuthService) SwitchRole(ctx context.Context, role domain.Role) error {
	return s.SelectRole(ctx, role)
}

func (s *AuthService) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// HandleSessionExpired drops the current user after the backend rejected the
// token. The token store has already been cleared by the executor. Events
// carrying another session's token are ignored.
func (s *AuthService) HandleSessionExpired(ctx context.Context, ev ports.SessionExpired) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	if ev.Token != s.token {
		s.log.Debug().Str("path", ev.Path).Msg("ignoring expiry of a previous session")
		return
	}

	s.log.Info().Str("username", s.user.Username).Str("path", ev.Path).Msg("session expired")
	s.user = nil
	s.token = ""
	if err := s.kv.Delete(ctx, KeyAuthUser); err != nil {
		s.log.Warn().Err(err).Msg("clear expired session failed")
	}
}

func (s *AuthService) establish(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, sess.User); err != nil {
		return err
	}
	if err := s.tokens.SetToken(ctx, sess.Token); err != nil {
		return err
	}
	if err := s.tokens.SetUser(ctx, sess.User); err != nil {
		return err
	}
	u := sess.User
	s.user = &u
	s.token = sess.Token
	s.log.Info().Str("username", u.Username).Str("role", u.Role.String()).Msg("signed in")
	return nil
}

func (s *AuthService) persist(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Set(ctx, KeyAuthUser, string(raw))
}

func (s *AuthService) record(action, result string) {
	metrics.AuthAttemptsTotal.WithLabelValues(s.backend.Name(), action, result).Inc()
}
