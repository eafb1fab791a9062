package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/infrastructure/backend"
)

type stubPolicies struct {
	listFilter backend.ListFilter
	farmerID   string
	approved   string
	err        error
}

func (s *stubPolicies) List(_ context.Context, f backend.ListFilter) ([]domain.Policy, error) {
	s.listFilter = f
	return []domain.Policy{{ID: "p1"}, {ID: "p2"}}, s.err
}

func (s *stubPolicies) ListByFarmer(_ context.Context, farmerID string) ([]domain.Policy, error) {
	s.farmerID = farmerID
	return []domain.Policy{{ID: "p1", FarmerID: farmerID}}, s.err
}

func (s *stubPolicies) Get(_ context.Context, id string) (domain.Policy, error) {
	return domain.Policy{ID: id}, s.err
}

func (s *stubPolicies) Approve(_ context.Context, id string) (domain.Policy, error) {
	s.approved = id
	return domain.Policy{ID: id, Status: "active"}, s.err
}

type stubClaims struct {
	filter   backend.ListFilter
	lat, lng float64
}

func (s *stubClaims) ListClaims(_ context.Context, f backend.ListFilter) ([]domain.Claim, error) {
	s.filter = f
	return nil, nil
}

func (s *stubClaims) Weather(_ context.Context, lat, lng float64) (domain.WeatherReport, error) {
	s.lat, s.lng = lat, lng
	return domain.WeatherReport{Latitude: lat, Longitude: lng, Temperature: 21}, nil
}

type stubMonitoring struct {
	started backend.StartMonitoringInput
}

func (s *stubMonitoring) List(context.Context, backend.ListFilter) ([]domain.MonitoringRecord, error) {
	return []domain.MonitoringRecord{{ID: "m1"}}, nil
}

func (s *stubMonitoring) Start(_ context.Context, in backend.StartMonitoringInput) (domain.MonitoringRecord, error) {
	s.started = in
	return domain.MonitoringRecord{ID: "m2", PolicyID: in.PolicyID, SurveyorID: in.SurveyorID}, nil
}

type stubStats struct{}

func (stubStats) Statistics(context.Context) (domain.AdminStatistics, error) {
	return domain.AdminStatistics{TotalUsers: 4}, nil
}

func withUser(c echo.Context, u domain.User) {
	c.Set(CtxUser, u)
	c.Set(CtxRole, u.Role)
}

func TestDashboard_Policies_FarmerSeesOwn(t *testing.T) {
	e := newTestEcho()
	policies := &stubPolicies{}
	h := NewDashboardHandler(policies, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/policies?status=active", "")
	withUser(c, domain.User{ID: "farmer-1", Username: "farmer", Role: domain.RoleFarmer})

	if err := h.Policies(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if policies.farmerID != "farmer-1" {
		t.Fatalf("expected farmer-scoped lookup, got %q", policies.farmerID)
	}

	var resp listResponse[domain.Policy]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 1 || resp.Data[0].FarmerID != "farmer-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestDashboard_Policies_InsurerFilters(t *testing.T) {
	e := newTestEcho()
	policies := &stubPolicies{}
	h := NewDashboardHandler(policies, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/policies?status=pending&page=2&limit=10", "")
	withUser(c, domain.User{ID: "i1", Username: "ins", Role: domain.RoleInsurer})

	if err := h.Policies(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if policies.farmerID != "" {
		t.Fatalf("insurer must not be farmer-scoped")
	}
	want := backend.ListFilter{Status: "pending", Page: 2, Limit: 10}
	if policies.listFilter.Status != want.Status || policies.listFilter.Page != want.Page || policies.listFilter.Limit != want.Limit {
		t.Fatalf("unexpected filter: %+v", policies.listFilter)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDashboard_Policies_LimitTooLarge(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(&stubPolicies{}, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, _ := jsonContext(e, http.MethodGet, "/dashboard/policies?limit=500", "")
	withUser(c, domain.User{ID: "a1", Username: "admin", Role: domain.RoleAdmin})

	var he *echo.HTTPError
	if err := h.Policies(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestDashboard_Policies_BackendErrorPropagates(t *testing.T) {
	e := newTestEcho()
	backendErr := &domain.APIError{Status: http.StatusForbidden, Message: "forbidden"}
	h := NewDashboardHandler(&stubPolicies{err: backendErr}, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, _ := jsonContext(e, http.MethodGet, "/dashboard/policies", "")
	withUser(c, domain.User{ID: "a1", Username: "admin", Role: domain.RoleAdmin})

	if err := h.Policies(c); !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestDashboard_Policies_MissingSession(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(&stubPolicies{}, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, _ := jsonContext(e, http.MethodGet, "/dashboard/policies", "")

	var he *echo.HTTPError
	if err := h.Policies(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDashboard_Claims_FarmerScoped(t *testing.T) {
	e := newTestEcho()
	claims := &stubClaims{}
	h := NewDashboardHandler(&stubPolicies{}, claims, &stubMonitoring{}, stubStats{})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/claims", "")
	withUser(c, domain.User{ID: "farmer-1", Username: "farmer", Role: domain.RoleFarmer})

	if err := h.Claims(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := claims.filter.Extra.Get("farmerId"); got != "farmer-1" {
		t.Fatalf("expected farmerId filter, got %q", got)
	}
	if rec.Body.String() != "{\"data\":[],\"count\":0}\n" {
		t.Fatalf("expected empty list envelope, got %s", rec.Body.String())
	}
}

func TestDashboard_StartMonitoring(t *testing.T) {
	e := newTestEcho()
	monitoring := &stubMonitoring{}
	h := NewDashboardHandler(&stubPolicies{}, &stubClaims{}, monitoring, stubStats{})

	c, rec := jsonContext(e, http.MethodPost, "/dashboard/monitoring", `{"policyId":"p1","notes":"first visit"}`)
	withUser(c, domain.User{ID: "s1", Username: "surveyor", Role: domain.RoleSurveyor})

	if err := h.StartMonitoring(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if monitoring.started.SurveyorID != "s1" || monitoring.started.PolicyID != "p1" {
		t.Fatalf("unexpected input: %+v", monitoring.started)
	}
}

func TestDashboard_StartMonitoring_RequiresPolicy(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(&stubPolicies{}, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, _ := jsonContext(e, http.MethodPost, "/dashboard/monitoring", `{"notes":"x"}`)
	withUser(c, domain.User{ID: "s1", Username: "surveyor", Role: domain.RoleSurveyor})

	var he *echo.HTTPError
	if err := h.StartMonitoring(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestDashboard_Weather(t *testing.T) {
	e := newTestEcho()
	claims := &stubClaims{}
	h := NewDashboardHandler(&stubPolicies{}, claims, &stubMonitoring{}, stubStats{})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/weather?lat=-1.94&lng=30.06", "")
	if err := h.Weather(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if claims.lat != -1.94 || claims.lng != 30.06 {
		t.Fatalf("unexpected coordinates: %v,%v", claims.lat, claims.lng)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodGet, "/dashboard/weather?lat=120&lng=30", "")
	var he *echo.HTTPError
	if err := h.Weather(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for out-of-range latitude, got %v", err)
	}
}

func TestDashboard_ApprovePolicy(t *testing.T) {
	e := newTestEcho()
	policies := &stubPolicies{}
	h := NewDashboardHandler(policies, &stubClaims{}, &stubMonitoring{}, stubStats{})

	c, rec := jsonContext(e, http.MethodPost, "/dashboard/policies/p9/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("p9")

	if err := h.ApprovePolicy(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if policies.approved != "p9" || rec.Code != http.StatusOK {
		t.Fatalf("expected p9 approved, got %q (%d)", policies.approved, rec.Code)
	}
}
