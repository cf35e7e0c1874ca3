package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecomsys/inventory-service/pkg/utils"
)

// SecurityHeaders adds security-related HTTP headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Add various security headers
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Content-Security-Policy", "default-src 'self'")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		
		// Call the next handler
		return c.Next()
	}
}

// AdminAPIKeyAuth checks the Bearer token on the request against a
// bcrypt-hashed static API key, used to gate the administrative create
// endpoint (spec.md §4.7).
func AdminAPIKeyAuth(hashedKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		if err := utils.VerifyPassword(token, hashedKey); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid api key",
			})
		}

		return c.Next()
	}
}
