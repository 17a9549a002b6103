package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bgf/dashboard-api/docs"
	"github.com/bgf/dashboard-api/internal/api/handler"
	"github.com/bgf/dashboard-api/internal/api/middleware"
	"github.com/bgf/dashboard-api/internal/core/access"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// StaffAuth is the staff login service as the router needs it.
type StaffAuth interface {
	ports.StaffAuthService
	CookieName() string
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log           zerolog.Logger
	StaffAuth     StaffAuth
	Auth          ports.AuthService
	Users         ports.UserService
	Requests      ports.RequestService
	Workflow      ports.WorkflowService
	Notifications ports.NotificationService
	Reports       ports.ReportService
	Stream        handler.Streamer
	Health        map[string]handler.Pinger
	Routes        *access.Table // defaults to access.Default

	Cookie          handler.CookieConfig
	LoginRatePerMin int
	AllowedOrigin   string
	// Metrics registers the HTTP metrics; nil uses the default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	routes := d.Routes
	if routes == nil {
		routes = access.Default
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(metricsMiddleware(d.Metrics))
	if d.AllowedOrigin != "" {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     []string{d.AllowedOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
			AllowCredentials: true,
		}))
	}

	// --- Probes, metrics, docs (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(d.Metrics))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Authenticate(d.StaffAuth, d.Auth)
	limiter := middleware.NewLoginLimiter(d.LoginRatePerMin)
	staffOnly := middleware.StaffOnly()
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Staff access-code sessions ---
	staffAuth := handler.NewStaffAuthHandler(d.StaffAuth, d.Cookie)
	api.POST("/staff-auth/login", staffAuth.Login, limiter.Middleware("staff"))
	api.GET("/staff-auth/verify", staffAuth.Verify)
	api.POST("/staff-auth/logout", staffAuth.Logout)

	// --- Email/password accounts ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Users, routes)
	api.POST("/auth/register", authHandler.Register, limiter.Middleware("register"))
	api.POST("/auth/login", authHandler.Login, limiter.Middleware("user"))
	api.GET("/auth/me", authHandler.Me, auth)

	// --- Route guard ---
	accessHandler := handler.NewAccessHandler(routes)
	api.POST("/access/check", accessHandler.Check, middleware.Identify(d.StaffAuth, d.Auth))
	api.GET("/access/navigation", accessHandler.Navigation, auth)

	// --- Requests and their workflow ---
	requests := handler.NewRequestHandler(d.Requests)
	workflow := handler.NewWorkflowHandler(d.Requests, d.Workflow)
	rg := api.Group("/requests", auth)
	rg.POST("", requests.Create, middleware.RBAC(domain.RoleBeneficiary, domain.RoleAdmin))
	rg.GET("", requests.List)
	rg.GET("/:id", requests.Get)
	rg.PUT("/:id", requests.Update)
	rg.DELETE("/:id", requests.Delete, adminOnly)
	rg.POST("/:id/documents", requests.AddDocument)
	rg.GET("/:id/workflow", workflow.Get)
	rg.PUT("/:id/stage", workflow.UpdateStage)
	rg.POST("/:id/delegate", workflow.Delegate, staffOnly)
	rg.GET("/:id/history", workflow.History)
	rg.POST("/:id/comments", workflow.Comment)

	// --- Notifications ---
	notifications := handler.NewNotificationHandler(d.Notifications, d.Stream)
	api.GET("/notifications/stream", notifications.Stream, middleware.QueryToken(), auth)
	ng := api.Group("/notifications", auth)
	ng.GET("", notifications.List)
	ng.POST("", notifications.Create, staffOnly)
	ng.GET("/unread-count", notifications.UnreadCount)
	ng.PUT("/read-all", notifications.MarkAllRead)
	ng.PUT("/:id/read", notifications.MarkRead)
	ng.DELETE("/:id", notifications.Delete)

	// --- Administration ---
	users := handler.NewUserHandler(d.Users)
	ug := api.Group("/users", auth)
	ug.GET("", users.List, middleware.RBAC(domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin))
	ug.GET("/:id", users.Get, adminOnly)
	ug.PUT("/:id", users.Update, adminOnly)
	ug.DELETE("/:id", users.Delete, adminOnly)

	reports := handler.NewReportHandler(d.Reports)
	api.GET("/reports/summary", reports.Summary, auth,
		middleware.RBAC(domain.RoleHeadOfPrograms, domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin))
	api.GET("/activity", reports.Activity, auth,
		middleware.RBAC(domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin))

	return e
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "bgf",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
