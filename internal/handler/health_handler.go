package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/config"
	"github.com/iskolarhub/iskolar-api/internal/utils"
)

// HealthResponse reports service status plus the reachability of the
// backing stores. Status is "degraded" when any configured check fails.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns the health endpoint handler. Nil stores are
// skipped rather than reported as failures.
func HealthCheck(cfg config.Config, db *gorm.DB, cache *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Checks:      map[string]string{},
		}

		ctx := c.UserContext()

		if db != nil {
			payload.Checks["database"] = "ok"
			if sqlDB, err := db.DB(); err != nil {
				payload.Checks["database"] = err.Error()
			} else if err := sqlDB.PingContext(ctx); err != nil {
				payload.Checks["database"] = err.Error()
			}
		}

		if cache != nil {
			payload.Checks["redis"] = "ok"
			if err := cache.Ping(ctx).Err(); err != nil {
				payload.Checks["redis"] = err.Error()
			}
		}

		for _, state := range payload.Checks {
			if state != "ok" {
				payload.Status = "degraded"
			}
		}

		return utils.SendSuccess(c, "service health", payload)
	}
}
