package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/api/handler"
	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/infrastructure/backend"
)

type fixedAuth struct {
	user *domain.User
}

func (a *fixedAuth) Login(context.Context, string, string) (bool, error) { return false, nil }
func (a *fixedAuth) Logout(context.Context) error {
	a.user = nil
	return nil
}
func (a *fixedAuth) Register(context.Context, string, string, domain.Role) (bool, error) {
	return false, nil
}
func (a *fixedAuth) SelectRole(context.Context, domain.Role) error { return nil }
func (a *fixedAuth) SwitchRole(context.Context, domain.Role) error { return nil }
func (a *fixedAuth) CurrentUser() (domain.User, bool) {
	if a.user == nil {
		return domain.User{}, false
	}
	return *a.user, true
}
func (a *fixedAuth) IsAuthenticated() bool { return a.user != nil }

type fakeBackend struct {
	policiesErr error
}

func (f *fakeBackend) List(context.Context, backend.ListFilter) ([]domain.Policy, error) {
	return []domain.Policy{{ID: "p1"}}, f.policiesErr
}
func (f *fakeBackend) ListByFarmer(context.Context, string) ([]domain.Policy, error) {
	return nil, f.policiesErr
}
func (f *fakeBackend) Get(_ context.Context, id string) (domain.Policy, error) {
	return domain.Policy{ID: id}, nil
}
func (f *fakeBackend) Approve(_ context.Context, id string) (domain.Policy, error) {
	return domain.Policy{ID: id}, nil
}
func (f *fakeBackend) ListClaims(context.Context, backend.ListFilter) ([]domain.Claim, error) {
	return nil, nil
}
func (f *fakeBackend) Weather(context.Context, float64, float64) (domain.WeatherReport, error) {
	return domain.WeatherReport{}, nil
}
func (f *fakeBackend) Statistics(context.Context) (domain.AdminStatistics, error) {
	return domain.AdminStatistics{TotalUsers: 3}, nil
}

type fakeMonitoring struct{}

func (fakeMonitoring) List(context.Context, backend.ListFilter) ([]domain.MonitoringRecord, error) {
	return nil, nil
}
func (fakeMonitoring) Start(context.Context, backend.StartMonitoringInput) (domain.MonitoringRecord, error) {
	return domain.MonitoringRecord{ID: "m1"}, nil
}

type fakeLocations struct{}

func (fakeLocations) Provinces(context.Context) []string { return domain.FallbackProvinces }
func (fakeLocations) Search(context.Context, string, bool) ([]domain.LocationMatch, error) {
	return nil, nil
}
func (fakeLocations) Hierarchy(_ context.Context, province, _, _ string) (*domain.Hierarchy, error) {
	return &domain.Hierarchy{Province: province}, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(user *domain.User, be *fakeBackend, pingErr error) *echo.Echo {
	return NewRouter(Deps{
		Auth:       &fixedAuth{user: user},
		Policies:   be,
		Claims:     be,
		Monitoring: fakeMonitoring{},
		Statistics: be,
		Locations:  fakeLocations{},
		Pingers: map[string]handler.Pinger{
			"session_store": pingerFunc(func(context.Context) error { return pingErr }),
		},
		Logger: zerolog.Nop(),
	})
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	e := newTestRouter(nil, &fakeBackend{}, nil)

	rec := serve(e, http.MethodGet, "/dashboard/policies")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "authentication required") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_RoleGates(t *testing.T) {
	cases := []struct {
		role   domain.Role
		method string
		path   string
		code   int
	}{
		{domain.RoleFarmer, http.MethodGet, "/dashboard/statistics", http.StatusForbidden},
		{domain.RoleGovernment, http.MethodGet, "/dashboard/statistics", http.StatusOK},
		{domain.RoleAdmin, http.MethodGet, "/dashboard/statistics", http.StatusOK},
		{domain.RoleFarmer, http.MethodPost, "/dashboard/policies/p1/approve", http.StatusForbidden},
		{domain.RoleUnderwriter, http.MethodPost, "/dashboard/policies/p1/approve", http.StatusOK},
		{domain.RoleGovernment, http.MethodGet, "/dashboard/claims", http.StatusForbidden},
		{domain.RoleSurveyor, http.MethodGet, "/dashboard/monitoring", http.StatusOK},
		{domain.RoleFarmer, http.MethodGet, "/dashboard/monitoring", http.StatusForbidden},
		{domain.RoleFarmer, http.MethodGet, "/dashboard/weather?lat=-1.9&lng=30", http.StatusOK},
	}
	for _, tc := range cases {
		e := newTestRouter(&domain.User{ID: "u1", Username: "u", Role: tc.role}, &fakeBackend{}, nil)
		rec := serve(e, tc.method, tc.path)
		if rec.Code != tc.code {
			t.Fatalf("%s %s as %s: expected %d, got %d (%s)", tc.method, tc.path, tc.role, tc.code, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_ForwardsBackendError(t *testing.T) {
	be := &fakeBackend{policiesErr: &domain.APIError{Status: http.StatusForbidden, Message: "forbidden"}}
	e := newTestRouter(&domain.User{ID: "u1", Username: "ins", Role: domain.RoleInsurer}, be, nil)

	rec := serve(e, http.MethodGet, "/dashboard/policies")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"error":"forbidden"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	e := newTestRouter(nil, &fakeBackend{}, nil)

	for _, path := range []string{"/health", "/health/ready", "/locations/provinces", "/metrics"} {
		if rec := serve(e, http.MethodGet, path); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
	if rec := serve(e, http.MethodGet, "/session"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /session anonymous: expected 401, got %d", rec.Code)
	}
}

func TestRouter_RecordsInboundMetrics(t *testing.T) {
	e := newTestRouter(nil, &fakeBackend{}, nil)

	serve(e, http.MethodGet, "/health")
	serve(e, http.MethodGet, "/dashboard/policies")

	body := serve(e, http.MethodGet, "/metrics").Body.String()
	for _, want := range []string{
		`portal_http_requests_total{code="200",host="example.com",method="GET",url="/health"} 1`,
		`portal_http_requests_total{code="401",host="example.com",method="GET",url="/dashboard/policies"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in /metrics output:\n%s", want, body)
		}
	}
}

func TestRouter_ReadinessDegraded(t *testing.T) {
	e := newTestRouter(nil, &fakeBackend{}, errors.New("connection refused"))

	rec := serve(e, http.MethodGet, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected dependency error in body: %s", rec.Body.String())
	}
}
