package middleware

import (
	"strings"

	"katalog/internal/apperr"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// AuthRequired is a Fiber middleware to check for a valid access token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return apperr.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateAccessToken(parts[1])
		if err != nil {
			return err
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireRoles lets the request through when the token grants any of roles.
// It must run after AuthRequired.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentUser(c)
		if !ok {
			return apperr.Unauthorized("Unauthorized")
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				return c.Next()
			}
		}
		return apperr.Forbidden("You do not have permission for this resource")
	}
}

// CurrentUser returns the token claims stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}
