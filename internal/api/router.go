package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/weatherdesk/report-api/docs"
	"github.com/weatherdesk/report-api/internal/api/handler"
	"github.com/weatherdesk/report-api/internal/api/middleware"
	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
	"github.com/weatherdesk/report-api/internal/infrastructure/http/handlers"
)

const metricsSubsystem = "weather_reports_http"

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Reports ports.ReportService
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness []handlers.Dependency
	// AuthRateLimit is the per-IP request rate for /auth routes; zero disables it.
	AuthRateLimit float64
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	reportHandler := handler.NewReportHandler(deps.Reports)
	requireAuth := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.AuthRateLimit > 0 {
		auth.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.AuthRateLimit))))
	}
	auth.POST("/user_register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)

	// --- Users ---
	users := e.Group("/users", requireAuth)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.GET("/users", userHandler.List, middleware.RBAC(domain.RoleAdmin))
	users.GET("/:user_id", userHandler.Get)
	users.DELETE("/:user_id", userHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Reports ---
	// The download link is mailed to the owner and works without a session.
	e.GET("/reports/:report_id/download", reportHandler.Download)

	reports := e.Group("/reports", requireAuth)
	reports.POST("", reportHandler.Create)
	reports.GET("", reportHandler.List)
	reports.GET("/:report_id", reportHandler.Get)
	reports.DELETE("/:report_id", reportHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Readiness...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
