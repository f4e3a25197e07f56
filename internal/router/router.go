package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/config"
	"github.com/iskolarhub/iskolar-api/internal/handler"
	"github.com/iskolarhub/iskolar-api/internal/middleware"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	ScholarshipHandler *handler.ScholarshipHandler
	ApplicationHandler *handler.ApplicationHandler
	DocumentHandler    *handler.DocumentHandler
	ReportHandler      *handler.ReportHandler
	SeedHandler        *handler.SeedHandler
	JWTMiddleware      fiber.Handler
	DB                 *gorm.DB
	Redis              *redis.Client
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)

		admin := users.Group("", middleware.RequireRole(models.RoleAdmin))
		deps.UserHandler.RegisterAdmin(admin)
	}

	if deps.ScholarshipHandler != nil {
		scholarships := api.Group("/scholarships", jwtMiddleware)
		deps.ScholarshipHandler.Register(scholarships)

		admin := scholarships.Group("", middleware.RequireRole(models.RoleAdmin))
		deps.ScholarshipHandler.RegisterAdmin(admin)
	}

	if deps.ApplicationHandler != nil {
		applications := api.Group("/applications", jwtMiddleware)
		deps.ApplicationHandler.Register(applications)

		recovery := applications.Group("", middleware.RequireSuperAdmin())
		deps.ApplicationHandler.RegisterAdmin(recovery)
	}

	if deps.DocumentHandler != nil {
		documents := api.Group("/documents", jwtMiddleware)
		deps.DocumentHandler.Register(documents)

		review := documents.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleCommittee))
		deps.DocumentHandler.RegisterReview(review)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware, middleware.RequireRole(models.RoleAdmin, models.RoleCommittee))
		deps.ReportHandler.Register(reports)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
