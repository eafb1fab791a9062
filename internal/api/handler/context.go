package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
)

// Context keys set by the session middleware.
const (
	CtxUser = "user"
	CtxRole = "role"
)

// ctxUser returns the signed-in user injected by the session middleware.
// A missing user means the route was registered without that middleware.
func ctxUser(c echo.Context) (domain.User, error) {
	u, ok := c.Get(CtxUser).(domain.User)
	if !ok || u.Username == "" {
		return domain.User{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return u, nil
}
