package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit := parseLimit(c, 20)

	posts, err := s.postService.ListRecent(ctx, limit)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// GetActorPosts handles GET /api/posts/actor/:id
func (s *Server) GetActorPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID, err := s.parseID(c, "id", "actor ID")
	if err != nil {
		return nil
	}
	limit := parseLimit(c, 20)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postService.ListByActor(ctx, actorID, limit, offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)

	var req struct {
		Content string `json:"content"`
		Topic   string `json:"topic,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, actorID, req.Content, req.Topic)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePost handles POST /api/posts/:id/like
// Liking an already liked post is a no-op; the response reports whether
// anything changed along with the current counters.
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	result, err := s.postService.Like(ctx, actorID, postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":      true,
		"changed":    result.Changed,
		"like_count": result.Post.LikeCount,
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	result, err := s.postService.Unlike(ctx, actorID, postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":      false,
		"changed":    result.Changed,
		"like_count": result.Post.LikeCount,
	})
}
