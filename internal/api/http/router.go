package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/http/handlers"
	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Departments    *handlers.DepartmentsHandler
	Profiles       *handlers.ProfilesHandler
	Requests       *handlers.RequestsHandler
	AdminRequests  *handlers.AdminRequestsHandler
	Notifications  *handlers.NotificationsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	app.Get("/departments", cfg.Departments.List)

	profiles := app.Group("/profiles", cfg.AuthMiddleware.Handle)
	profiles.Get("/me", cfg.Profiles.Me)
	profiles.Post("/setup", cfg.Profiles.Setup)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleStudent))
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdminTier())
	admin.Get("/requests", cfg.AdminRequests.List)
	admin.Get("/requests/:id", cfg.AdminRequests.Get)
	admin.Post("/requests/:id/resolve", cfg.AdminRequests.Resolve)
	admin.Post("/requests/:id/escalate", cfg.AdminRequests.Escalate)
	admin.Post("/requests/:id/terminate", cfg.AdminRequests.Terminate)
	admin.Get("/metrics", cfg.Metrics.Snapshot)

	super := admin.Group("/notifications", auth.RequireRole(domain.RoleSuperAdmin))
	super.Get("/", cfg.Notifications.List)
	super.Post("/sweep", cfg.Notifications.Sweep)
}
