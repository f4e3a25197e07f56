package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/iskolarhub/iskolar-api/internal/tenancy"
	"github.com/iskolarhub/iskolar-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens,
// derives the caller's identity, and installs the row-level scope on the
// request context. The scope is rebuilt from the token on every request;
// nothing identity-dependent is shared between requests.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("user_role", identity.Role)
		c.Locals("identity", identity)

		scope := tenancy.ScopeFor(identity)
		c.SetUserContext(tenancy.WithScope(c.UserContext(), scope))

		return c.Next()
	}
}

// ScopeFromRequest extracts the scope installed by JWTProtected. When no
// identity has been established it falls back to an empty identity, whose
// scope matches nothing beyond its own (nonexistent) user.
func ScopeFromRequest(c *fiber.Ctx) tenancy.Scope {
	if scope, ok := tenancy.FromContext(c.UserContext()); ok {
		return scope
	}
	return tenancy.ScopeFor(tenancy.Identity{})
}

// IdentityFromRequest extracts the identity installed by JWTProtected.
func IdentityFromRequest(c *fiber.Ctx) (tenancy.Identity, bool) {
	identity, ok := c.Locals("identity").(tenancy.Identity)
	return identity, ok
}

func identityFromClaims(claims jwt.MapClaims) (tenancy.Identity, error) {
	userID, err := subjectFromClaims(claims)
	if err != nil {
		return tenancy.Identity{}, err
	}

	role, _ := claims["role"].(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return tenancy.Identity{}, fmt.Errorf("missing role claim")
	}

	identity := tenancy.Identity{UserID: userID, Role: role}

	if raw, ok := claims["scholarship_id"]; ok {
		if scholarshipID, err := normalizeID(raw); err == nil && scholarshipID > 0 {
			identity.ScholarshipID = &scholarshipID
		}
	}

	return identity, nil
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeID(value); err == nil {
				return normalized, nil
			}
		}
	}
	return 0, fmt.Errorf("missing subject claim")
}

func normalizeID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported identifier type")
	}
}
