package middleware

import (
	"edulearn/backend/config"
	"edulearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthMiddleware rejects requests without a valid session token.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present and
// lets anonymous requests through.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if identity, err := utils.ExtractIdentityFromToken(c, cfg); err == nil {
			c.Locals(identityKey, identity)
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by the auth middleware, or nil.
func IdentityFrom(c *fiber.Ctx) *utils.Identity {
	identity, _ := c.Locals(identityKey).(*utils.Identity)
	return identity
}
