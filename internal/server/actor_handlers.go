package server

import (
	"murmur/internal/middleware"
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SyncActor handles POST /api/auth/sync
// The body carries an opaque persona-service token. On first sight a new
// actor is created from the persona profile; later calls refresh it.
func (s *Server) SyncActor(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Persona token is required"))
	}

	actor, err := s.actorService.Sync(ctx, req.Token)
	if err != nil {
		return respond(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(actor)
}

// GetMyActor handles GET /api/actors/me
func (s *Server) GetMyActor(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(actor)
}
