package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iskolarhub/iskolar-api/internal/config"
	"github.com/iskolarhub/iskolar-api/internal/handler"
	"github.com/iskolarhub/iskolar-api/internal/utils"
)

func TestHealthCheckReportsStoreReachability(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "Iskolar API", AppEnv: "test"}, nil, cache))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	payload, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ok", payload["status"])

	checks, ok := payload["checks"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ok", checks["redis"])

	// A dead cache degrades the report instead of failing the request.
	mini.Close()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeResponse(t, resp, &body)
	payload, ok = body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "degraded", payload["status"])
}
