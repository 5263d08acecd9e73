package middleware

import (
	"context"
	"strings"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ActorLookup resolves a persona token to a locally known actor.
type ActorLookup func(ctx context.Context, token string) (*models.Actor, error)

// ActorRequired enforces authentication for protected routes. The bearer
// token is the actor's opaque persona-service credential; there is no local
// token issuance. On success the actor and its ID are stored in Fiber locals.
func ActorRequired(lookup ActorLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		actor, err := lookup(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown persona token",
			})
		}

		c.Locals("actorID", actor.ID)
		c.Locals("actor", actor)
		return c.Next()
	}
}

// CurrentActor returns the authenticated actor stored by ActorRequired.
func CurrentActor(c *fiber.Ctx) *models.Actor {
	if a, ok := c.Locals("actor").(*models.Actor); ok {
		return a
	}
	return nil
}
