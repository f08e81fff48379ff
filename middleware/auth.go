package middleware

import (
	"strings"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserContextMiddleware extracts the identity the gateway attached to the
// request. Authentication itself happens upstream; this service only trusts
// the forwarded headers.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID, request must come through the gateway with auth context",
			})
		}

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			r = strings.TrimSpace(r)
			if r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)

		logging.L().Debug("user context attached",
			zap.String("user_id", userID),
			zap.Strings("roles", roles),
			zap.String("path", c.Path()))
		return c.Next()
	}
}

// RequireRoles gates a route to users carrying at least one of the given
// roles. Must run after UserContextMiddleware.
func RequireRoles(required ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, have := range roles {
			for _, want := range required {
				if have == want {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient role for this operation",
		})
	}
}

// RequireManager is shorthand for the manager-or-admin gate used across the
// approval and admin endpoints.
func RequireManager() fiber.Handler {
	return RequireRoles(models.RoleManager, models.RoleAdmin)
}
