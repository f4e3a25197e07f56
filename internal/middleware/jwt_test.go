package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(capture *tenancy.Identity, scoped *bool) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/protected", func(c *fiber.Ctx) error {
		if identity, ok := IdentityFromRequest(c); ok {
			*capture = identity
		}
		_, *scoped = tenancy.FromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestJWTProtectedInstallsIdentityAndScope(t *testing.T) {
	var identity tenancy.Identity
	var scoped bool
	app := newProtectedApp(&identity, &scoped)

	token := signToken(t, jwt.MapClaims{
		"sub":            "42",
		"role":           models.RoleCommittee,
		"scholarship_id": 3,
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.True(t, scoped)
	require.EqualValues(t, 42, identity.UserID)
	require.Equal(t, models.RoleCommittee, identity.Role)
	require.NotNil(t, identity.ScholarshipID)
	require.EqualValues(t, 3, *identity.ScholarshipID)
}

func TestJWTProtectedSuperAdminHasNoScholarship(t *testing.T) {
	var identity tenancy.Identity
	var scoped bool
	app := newProtectedApp(&identity, &scoped)

	token := signToken(t, jwt.MapClaims{
		"sub":  "1",
		"role": models.RoleAdmin,
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, identity.ScholarshipID)
	require.True(t, identity.IsSuperAdmin())
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	var identity tenancy.Identity
	var scoped bool
	app := newProtectedApp(&identity, &scoped)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not-a-token",
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, name)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTProtectedRejectsExpiredTokens(t *testing.T) {
	var identity tenancy.Identity
	var scoped bool
	app := newProtectedApp(&identity, &scoped)

	token := signToken(t, jwt.MapClaims{
		"sub":  "42",
		"role": models.RoleStudent,
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSuperAdminBlocksScopedAdmins(t *testing.T) {
	app := fiber.New()
	scholarshipID := uint(3)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("identity", tenancy.Identity{UserID: 2, Role: models.RoleAdmin, ScholarshipID: &scholarshipID})
		return c.Next()
	})
	app.Use(RequireSuperAdmin())
	app.Get("/force", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/force", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleChecksIdentity(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("identity", tenancy.Student(7, 3))
		return c.Next()
	})
	app.Use(RequireRole(models.RoleAdmin, models.RoleCommittee))
	app.Get("/reports", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
