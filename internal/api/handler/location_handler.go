package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
)

type LocationSource interface {
	Provinces(ctx context.Context) []string
	Search(ctx context.Context, query string, includeDistricts bool) ([]domain.LocationMatch, error)
	Hierarchy(ctx context.Context, province, district, sector string) (*domain.Hierarchy, error)
}

// LocationHandler serves the public location pickers. No session required.
type LocationHandler struct {
	locations LocationSource
}

func NewLocationHandler(locations LocationSource) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type searchQuery struct {
	Q         string `query:"q"         validate:"required"`
	Districts bool   `query:"districts"`
}

type hierarchyQuery struct {
	Province string `query:"province" validate:"required"`
	District string `query:"district"`
	Sector   string `query:"sector"   validate:"excluded_without=District"`
}

func (h *LocationHandler) Provinces(c echo.Context) error {
	return c.JSON(http.StatusOK, newList(h.locations.Provinces(c.Request().Context())))
}

func (h *LocationHandler) Search(c echo.Context) error {
	q, err := bindQuery[searchQuery](c)
	if err != nil {
		return err
	}
	matches, err := h.locations.Search(c.Request().Context(), q.Q, q.Districts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(matches))
}

func (h *LocationHandler) Hierarchy(c echo.Context) error {
	q, err := bindQuery[hierarchyQuery](c)
	if err != nil {
		return err
	}
	hierarchy, err := h.locations.Hierarchy(c.Request().Context(), q.Province, q.District, q.Sector)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hierarchy)
}
