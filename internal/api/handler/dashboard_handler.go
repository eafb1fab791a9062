package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/infrastructure/backend"
)

// PolicySource is the part of the policies client the dashboards use.
type PolicySource interface {
	List(ctx context.Context, f backend.ListFilter) ([]domain.Policy, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]domain.Policy, error)
	Get(ctx context.Context, id string) (domain.Policy, error)
	Approve(ctx context.Context, id string) (domain.Policy, error)
}

type ClaimSource interface {
	ListClaims(ctx context.Context, f backend.ListFilter) ([]domain.Claim, error)
	Weather(ctx context.Context, lat, lng float64) (domain.WeatherReport, error)
}

type MonitoringSource interface {
	List(ctx context.Context, f backend.ListFilter) ([]domain.MonitoringRecord, error)
	Start(ctx context.Context, in backend.StartMonitoringInput) (domain.MonitoringRecord, error)
}

type StatisticsSource interface {
	Statistics(ctx context.Context) (domain.AdminStatistics, error)
}

// DashboardHandler serves the data behind the per-role dashboards. Backend
// errors are returned as-is so the error handler can forward their status.
type DashboardHandler struct {
	policies   PolicySource
	claims     ClaimSource
	monitoring MonitoringSource
	stats      StatisticsSource
}

func NewDashboardHandler(policies PolicySource, claims ClaimSource, monitoring MonitoringSource, stats StatisticsSource) *DashboardHandler {
	return &DashboardHandler{policies: policies, claims: claims, monitoring: monitoring, stats: stats}
}

type listQuery struct {
	Status string `query:"status"`
	Search string `query:"search"`
	Page   int    `query:"page"  validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
}

func (q listQuery) filter() backend.ListFilter {
	return backend.ListFilter{Status: q.Status, Search: q.Search, Page: q.Page, Limit: q.Limit}
}

type weatherQuery struct {
	Lat float64 `query:"lat" validate:"latitude"`
	Lng float64 `query:"lng" validate:"longitude"`
}

type startMonitoringRequest struct {
	PolicyID string `json:"policyId" validate:"required"`
	FarmID   string `json:"farmId"`
	Notes    string `json:"notes"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items, Count: len(items)}
}

func bindQuery[T any](c echo.Context) (T, error) {
	var q T
	if err := c.Bind(&q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return q, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return q, nil
}

// Policies lists policies. Farmers only ever see their own.
func (h *DashboardHandler) Policies(c echo.Context) error {
	u, err := ctxUser(c)
	if err != nil {
		return err
	}
	q, err := bindQuery[listQuery](c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var policies []domain.Policy
	if u.Role == domain.RoleFarmer {
		policies, err = h.policies.ListByFarmer(ctx, u.ID)
	} else {
		policies, err = h.policies.List(ctx, q.filter())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(policies))
}

func (h *DashboardHandler) Policy(c echo.Context) error {
	p, err := h.policies.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *DashboardHandler) ApprovePolicy(c echo.Context) error {
	p, err := h.policies.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Claims lists claims. Farmers only ever see their own.
func (h *DashboardHandler) Claims(c echo.Context) error {
	u, err := ctxUser(c)
	if err != nil {
		return err
	}
	q, err := bindQuery[listQuery](c)
	if err != nil {
		return err
	}

	f := q.filter()
	if u.Role == domain.RoleFarmer {
		f.Extra = url.Values{"farmerId": {u.ID}}
	}
	claims, err := h.claims.ListClaims(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(claims))
}

func (h *DashboardHandler) Monitoring(c echo.Context) error {
	q, err := bindQuery[listQuery](c)
	if err != nil {
		return err
	}
	records, err := h.monitoring.List(c.Request().Context(), q.filter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(records))
}

// StartMonitoring opens a campaign assigned to the signed-in surveyor.
func (h *DashboardHandler) StartMonitoring(c echo.Context) error {
	u, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req startMonitoringRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	rec, err := h.monitoring.Start(c.Request().Context(), backend.StartMonitoringInput{
		PolicyID:   req.PolicyID,
		FarmID:     req.FarmID,
		SurveyorID: u.ID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *DashboardHandler) Statistics(c echo.Context) error {
	stats, err := h.stats.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Weather(c echo.Context) error {
	q, err := bindQuery[weatherQuery](c)
	if err != nil {
		return err
	}
	w, err := h.claims.Weather(c.Request().Context(), q.Lat, q.Lng)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}
