package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/quizzo-go-api/internal/config"
	"github.com/noah-isme/quizzo-go-api/internal/handler"
	"github.com/noah-isme/quizzo-go-api/internal/middleware"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuizHandler         *handler.QuizHandler
	SubscriptionHandler *handler.SubscriptionHandler
	DashboardHandler    *handler.DashboardHandler
	PublicHandler       *handler.PublicHandler
	AdminHandler        *handler.AdminHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public profiles need no authentication.
	if deps.PublicHandler != nil {
		deps.PublicHandler.Register(api.Group("/public"))
	}

	// Learner surface
	learner := api.Group("", jwtMiddleware)
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(learner)
	}
	if deps.SubscriptionHandler != nil {
		deps.SubscriptionHandler.Register(learner)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(learner)
	}

	// Admin surface
	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}
}
