package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/api/handler"
	"github.com/agrisure/portal/internal/core/ports"
)

// Session rejects requests while no user is signed in and injects the
// current user and role into the context.
func Session(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := auth.CurrentUser()
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.Set(handler.CtxUser, user)
			c.Set(handler.CtxRole, user.Role)

			return next(c)
		}
	}
}
