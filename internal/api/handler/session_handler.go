package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// SessionHandler exposes the process-wide authentication state.
type SessionHandler struct {
	auth ports.AuthService
}

func NewSessionHandler(auth ports.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,role"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type sessionResponse struct {
	User          *domain.User `json:"user,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

// Login signs in against the configured auth backend.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ok, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	return h.current(c, http.StatusOK)
}

// Register creates an account and signs in as it.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      201   {object}  sessionResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	ok, err := h.auth.Register(c.Request().Context(), req.Username, req.Password, role)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserExists
	}
	return h.current(c, http.StatusCreated)
}

// Logout always succeeds from the caller's point of view.
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) Get(c echo.Context) error {
	if !h.auth.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	return h.current(c, http.StatusOK)
}

// SwitchRole changes the active dashboard role of the signed-in user.
func (h *SessionHandler) SwitchRole(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if !h.auth.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	if err := h.auth.SwitchRole(c.Request().Context(), role); err != nil {
		return err
	}
	return h.current(c, http.StatusOK)
}

func (h *SessionHandler) current(c echo.Context, status int) error {
	u, ok := h.auth.CurrentUser()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	return c.JSON(status, sessionResponse{User: &u, Authenticated: true})
}
