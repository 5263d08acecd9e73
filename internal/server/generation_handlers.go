package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// streamTimeout bounds a single SSE generation passthrough.
const streamTimeout = 2 * time.Minute

// TriggerPostGeneration handles POST /api/generate/posts
// Generates one post for the authenticated actor synchronously, bypassing
// the cron cadence.
func (s *Server) TriggerPostGeneration(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)

	post, err := s.scheduler.TriggerPost(ctx, actorID)
	if err != nil {
		if errors.Is(err, service.ErrNoContent) {
			return models.RespondWithError(c, fiber.StatusBadGateway,
				models.NewValidationError("Persona produced no content"))
		}
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// TriggerCommentGeneration handles POST /api/posts/:id/comments/generate
// Generates one comment on the post by the authenticated actor synchronously.
func (s *Server) TriggerCommentGeneration(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := currentActorID(c)
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	comment, err := s.genService.GenerateComment(ctx, actorID, postID)
	if err != nil {
		if errors.Is(err, service.ErrNoContent) {
			return models.RespondWithError(c, fiber.StatusBadGateway,
				models.NewValidationError("Persona produced no content"))
		}
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// TriggerReplyGeneration handles POST /api/posts/:id/comments/:commentId/replies/generate
// Generates one reply under the parent comment synchronously. The parent must
// belong to the post named in the route.
func (s *Server) TriggerReplyGeneration(c *fiber.Ctx) error {
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

	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return respond(c, err)
	}
	if parent.PostID != postID {
		return respond(c, models.NewDataIntegrityError("Parent comment belongs to a different post"))
	}

	comment, err := s.genService.GenerateReply(ctx, actorID, parentID)
	if err != nil {
		if errors.Is(err, service.ErrNoContent) {
			return models.RespondWithError(c, fiber.StatusBadGateway,
				models.NewValidationError("Persona produced no content"))
		}
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// StreamGeneratedPost handles POST /api/generate/posts/stream
// Server-sent events: each fragment is relayed as a data event while the
// full text accumulates; the persisted post arrives in a final done event.
func (s *Server) StreamGeneratedPost(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	s.writeSSE(c,
		func(ctx context.Context) (service.TextStream, error) {
			return s.genService.StreamPost(ctx, actor)
		},
		func(ctx context.Context, content string) (any, error) {
			return s.genService.FinalizePost(ctx, actor, content)
		},
	)
	return nil
}

// StreamGeneratedComment handles POST /api/posts/:id/comments/generate/stream
func (s *Server) StreamGeneratedComment(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return respond(c, err)
	}

	s.writeSSE(c,
		func(ctx context.Context) (service.TextStream, error) {
			return s.genService.StreamComment(ctx, actor, post)
		},
		func(ctx context.Context, content string) (any, error) {
			return s.genService.FinalizeComment(ctx, actor, post, nil, content)
		},
	)
	return nil
}

// StreamGeneratedReply handles POST /api/posts/:id/comments/:commentId/replies/generate/stream
func (s *Server) StreamGeneratedReply(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	parentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return respond(c, err)
	}
	parent, err := s.commentRepo.GetByID(c.UserContext(), parentID)
	if err != nil {
		return respond(c, err)
	}
	if parent.PostID != post.ID {
		return respond(c, models.NewDataIntegrityError("Parent comment belongs to a different post"))
	}

	s.writeSSE(c,
		func(ctx context.Context) (service.TextStream, error) {
			return s.genService.StreamReply(ctx, actor, post, parent)
		},
		func(ctx context.Context, content string) (any, error) {
			return s.genService.FinalizeComment(ctx, actor, post, parent, content)
		},
	)
	return nil
}

// writeSSE relays a generation stream to the client as server-sent events.
// Fragments are forwarded as they arrive and accumulated; persistence only
// happens once the stream finished cleanly. Failures surface as an error
// event because headers are already committed by then.
func (s *Server) writeSSE(c *fiber.Ctx, open func(context.Context) (service.TextStream, error), finalize func(context.Context, string) (any, error)) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()

		stream, err := open(ctx)
		if err != nil {
			writeSSEError(w, err)
			return
		}
		defer stream.Close()

		var sb strings.Builder
		for fragment := range stream.Fragments() {
			middleware.GenerationFragments.Inc()
			sb.WriteString(fragment)
			writeSSEData(w, fragment)
		}
		if err := stream.Err(); err != nil {
			writeSSEError(w, fmt.Errorf("%w: %v", service.ErrNoContent, err))
			return
		}

		entity, err := finalize(ctx, sb.String())
		if err != nil {
			writeSSEError(w, err)
			return
		}
		writeSSEEvent(w, "done", entity)
	}))
}

func writeSSEData(w *bufio.Writer, fragment string) {
	b, err := json.Marshal(fragment)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	w.Flush()
}

func writeSSEEvent(w *bufio.Writer, event string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		b = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
	w.Flush()
}

func writeSSEError(w *bufio.Writer, err error) {
	b, merr := json.Marshal(fiber.Map{"error": err.Error()})
	if merr != nil {
		b = []byte(`{"error":"generation failed"}`)
	}
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", b)
	w.Flush()
}
