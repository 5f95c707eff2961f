package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coupon-saver/internal/api/http/handlers"
	"github.com/spec-kit/coupon-saver/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Coupons        *handlers.CouponsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/coupons", cfg.Coupons.List)
	protected.Get("/coupons/:id", cfg.Coupons.Get)
	protected.Get("/stats", cfg.Coupons.Stats)
}
