package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCommentTree handles GET /api/posts/:id/comments
// The response is a forest of nested comment nodes, truncated at the tree
// depth cap; deeper replies stay retrievable via the replies endpoint.
func (s *Server) GetCommentTree(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	tree, err := s.commentService.Tree(ctx, postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tree)
}

// GetCommentReplies handles GET /api/posts/:id/comments/:commentId/replies
func (s *Server) GetCommentReplies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if _, err := s.parseID(c, "id", "post ID"); err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.ListReplies(ctx, commentID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(replies)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(ctx, actorID, postID, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CreateReply handles POST /api/posts/:id/comments/:commentId/replies
// The parent comment must belong to the same post; a mismatch is rejected
// with a conflict, never silently corrected.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	parentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateReply(ctx, actorID, postID, parentID, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
