package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tours-service/internal/api/http/handlers"
	"github.com/spec-kit/tours-service/internal/auth"
	"github.com/spec-kit/tours-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tours          *handlers.ToursHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")
	protect := cfg.AuthMiddleware.Protect

	users := api.Group("/users")
	users.Post("/signup", cfg.Auth.Signup)
	users.Post("/login", cfg.Auth.Login)
	users.Get("/logout", cfg.Auth.Logout)
	users.Post("/forgotPassword", cfg.Auth.ForgotPassword)
	users.Patch("/resetPassword/:token", cfg.Auth.ResetPassword)

	users.Patch("/updateMyPassword", protect, cfg.Auth.UpdatePassword)
	users.Get("/me", protect, cfg.Users.Me)
	users.Patch("/updateMe", protect, cfg.Users.UpdateMe)
	users.Delete("/deleteMe", protect, cfg.Users.DeleteMe)
	users.Get("/", protect, auth.RestrictTo(domain.RoleAdmin), cfg.Users.List)

	tours := api.Group("/tours")
	tourEditors := auth.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)
	tours.Get("/", cfg.Tours.ListTours)
	tours.Get("/:id", cfg.Tours.GetTour)
	tours.Post("/", protect, tourEditors, cfg.Tours.CreateTour)
	tours.Patch("/:id", protect, tourEditors, cfg.Tours.UpdateTour)
	tours.Delete("/:id", protect, tourEditors, cfg.Tours.DeleteTour)
}
