package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/services"
)

// AdminRequired rejects requests without a valid admin bearer token.
func AdminRequired(authService *services.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Bearer <token>
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Debug("admin token rejected", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals("admin_id", claims.AdminID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// RegistrationGuard lets anyone through while no admin account exists so the
// first admin can sign up. After that it behaves like AdminRequired.
func RegistrationGuard(authService *services.AuthService, log *zap.Logger) fiber.Handler {
	adminRequired := AdminRequired(authService, log)
	return func(c *fiber.Ctx) error {
		open, err := authService.RegistrationOpen(c.UserContext())
		if err != nil {
			log.Error("failed to check registration state", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		if open {
			return c.Next()
		}
		return adminRequired(c)
	}
}
