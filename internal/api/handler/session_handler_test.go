package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
)

type stubAuthService struct {
	user       *domain.User
	loginFn    func(ctx context.Context, username, password string) (bool, error)
	registerFn func(ctx context.Context, username, password string, role domain.Role) (bool, error)
	switched   domain.Role
	loggedOut  bool
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (bool, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	return s.registerFn(ctx, username, password, role)
}

func (s *stubAuthService) Logout(context.Context) error {
	s.loggedOut = true
	s.user = nil
	return nil
}

func (s *stubAuthService) SelectRole(ctx context.Context, role domain.Role) error {
	return s.SwitchRole(ctx, role)
}

func (s *stubAuthService) SwitchRole(_ context.Context, role domain.Role) error {
	s.switched = role
	if s.user != nil {
		s.user.Role = role
	}
	return nil
}

func (s *stubAuthService) CurrentUser() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *stubAuthService) IsAuthenticated() bool { return s.user != nil }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	stub.loginFn = func(_ context.Context, username, password string) (bool, error) {
		if username != "farmer" || password != "farmer" {
			t.Fatalf("unexpected credentials: %s/%s", username, password)
		}
		stub.user = &domain.User{ID: "u1", Username: username, Role: domain.RoleFarmer}
		return true, nil
	}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/session/login", `{"username":"farmer","password":"farmer"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || resp.User.Role != domain.RoleFarmer {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
}

func TestSessionHandler_Login_Rejected(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{loginFn: func(context.Context, string, string) (bool, error) { return false, nil }}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/session/login", `{"username":"farmer","password":"nope"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionHandler_Login_ValidationError(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/session/login", `{"username":"farmer"}`)
	err := h.Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestSessionHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubAuthService{})

	c, rec := jsonContext(e, http.MethodPost, "/session/login", `{"username":`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSessionHandler_Register_Created(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	stub.registerFn = func(_ context.Context, username, _ string, role domain.Role) (bool, error) {
		if role != domain.RoleSurveyor {
			t.Fatalf("expected normalised surveyor role, got %q", role)
		}
		stub.user = &domain.User{ID: "u2", Username: username, Role: role}
		return true, nil
	}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/session/register", `{"username":"sam","password":"pw1","role":"Surveyor"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionHandler_Register_AcceptsShortPassword(t *testing.T) {
	e := newTestEcho()
	var gotPassword string
	stub := &stubAuthService{}
	stub.registerFn = func(_ context.Context, username, password string, role domain.Role) (bool, error) {
		gotPassword = password
		stub.user = &domain.User{ID: "u3", Username: username, Role: role}
		return true, nil
	}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/session/register", `{"username":"sam","password":"a","role":"farmer"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotPassword != "a" {
		t.Fatalf("expected password to reach the service, got %q", gotPassword)
	}
}

func TestSessionHandler_Register_Duplicate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{registerFn: func(context.Context, string, string, domain.Role) (bool, error) { return false, nil }}
	h := NewSessionHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/session/register", `{"username":"sam","password":"pw1","role":"farmer"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionHandler_Register_UnknownRole(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/session/register", `{"username":"sam","password":"pw1","role":"pilot"}`)
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "role must be one of") {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodGet, "/session", "")
	if err := h.Get(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	h = NewSessionHandler(&stubAuthService{user: &domain.User{ID: "u1", Username: "farmer", Role: domain.RoleFarmer}})
	c, rec := jsonContext(e, http.MethodGet, "/session", "")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_SwitchRole(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{user: &domain.User{ID: "u1", Username: "farmer", Role: domain.RoleFarmer}}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPut, "/session/role", `{"role":"admin"}`)
	if err := h.SwitchRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.switched != domain.RoleAdmin {
		t.Fatalf("expected switch to admin, got %q", stub.switched)
	}
	if !strings.Contains(rec.Body.String(), `"role":"admin"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSessionHandler_SwitchRole_Anonymous(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	h := NewSessionHandler(stub)

	c, _ := jsonContext(e, http.MethodPut, "/session/role", `{"role":"admin"}`)
	if err := h.SwitchRole(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if stub.switched != "" {
		t.Fatalf("role must not change while anonymous")
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{user: &domain.User{Username: "farmer"}}
	h := NewSessionHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/session/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || !stub.loggedOut {
		t.Fatalf("expected 204 and a logout, got %d", rec.Code)
	}
}
