package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/api/handler"
	"github.com/agrisure/portal/internal/api/middleware"
	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// Deps are the collaborators the HTTP surface needs. The composition root
// builds them; NewRouter only wires routes.
type Deps struct {
	Auth       ports.AuthService
	Policies   handler.PolicySource
	Claims     handler.ClaimSource
	Monitoring handler.MonitoringSource
	Statistics handler.StatisticsSource
	Locations  handler.LocationSource
	// Pingers are probed by /health/ready, keyed by dependency name.
	Pingers map[string]handler.Pinger
	// Registry receives the inbound request metrics. Nil gives each router a
	// registry of its own. /metrics serves it next to the default registry.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// The /session routes share one process-wide session: a login from any client
// replaces it for every caller.
func NewRouter(d Deps) *echo.Echo {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Outside the request logger, which writes handler errors to the response
	// first so the recorded code is the one the client saw.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: reg,
	}))
	e.Use(requestLogger(d.Logger))

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(d.Auth)
	session := e.Group("/session")
	session.GET("", sessionHandler.Get)
	session.POST("/login", sessionHandler.Login)
	session.POST("/register", sessionHandler.Register)
	session.POST("/logout", sessionHandler.Logout)
	session.PUT("/role", sessionHandler.SwitchRole)

	// --- Dashboard routes (signed-in, role-gated) ---
	dashboardHandler := handler.NewDashboardHandler(d.Policies, d.Claims, d.Monitoring, d.Statistics)
	dash := e.Group("/dashboard", middleware.Session(d.Auth))

	dash.GET("/policies", dashboardHandler.Policies,
		middleware.RBAC(domain.RoleFarmer, domain.RoleInsurer, domain.RoleUnderwriter, domain.RoleAdmin))
	dash.GET("/policies/:id", dashboardHandler.Policy,
		middleware.RBAC(domain.RoleFarmer, domain.RoleInsurer, domain.RoleUnderwriter, domain.RoleAdmin))
	dash.POST("/policies/:id/approve", dashboardHandler.ApprovePolicy,
		middleware.RBAC(domain.RoleUnderwriter, domain.RoleInsurer, domain.RoleAdmin))
	dash.GET("/claims", dashboardHandler.Claims,
		middleware.RBAC(domain.RoleFarmer, domain.RoleInsurer, domain.RoleSurveyor, domain.RoleAdmin))
	dash.GET("/monitoring", dashboardHandler.Monitoring,
		middleware.RBAC(domain.RoleSurveyor, domain.RoleInsurer, domain.RoleAdmin))
	dash.POST("/monitoring", dashboardHandler.StartMonitoring,
		middleware.RBAC(domain.RoleSurveyor, domain.RoleAdmin))
	dash.GET("/statistics", dashboardHandler.Statistics,
		middleware.RBAC(domain.RoleAdmin, domain.RoleGovernment))
	dash.GET("/weather", dashboardHandler.Weather)

	// --- Location pickers (public) ---
	locationHandler := handler.NewLocationHandler(d.Locations)
	loc := e.Group("/locations")
	loc.GET("/provinces", locationHandler.Provinces)
	loc.GET("/search", locationHandler.Search)
	loc.GET("/hierarchy", locationHandler.Hierarchy)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Pingers)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, reg}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
