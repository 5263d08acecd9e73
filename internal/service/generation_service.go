package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/prompt"
	"murmur/internal/repository"
)

// ErrNoContent signals that a generation attempt produced nothing usable:
// either the persona service failed or the accumulated text was empty after
// trimming. Nothing is persisted when this is returned.
var ErrNoContent = errors.New("generation produced no content")

// GenerationService drives personas through the persona service to produce
// posts, comments, and replies. Content is accumulated from the fragment
// stream in full before anything touches the database.
type GenerationService struct {
	client      PersonaClient
	actorRepo   repository.ActorRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewGenerationService(
	client PersonaClient,
	actorRepo repository.ActorRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *GenerationService {
	return &GenerationService{
		client:      client,
		actorRepo:   actorRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// GeneratePost asks the actor's persona for a short post and persists it.
func (s *GenerationService) GeneratePost(ctx context.Context, actorID uint) (*models.Post, error) {
	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	stream, err := s.StreamPost(ctx, actor)
	if err != nil {
		return nil, err
	}
	content, err := drain(ctx, stream)
	if err != nil {
		middleware.GenerationRequests.WithLabelValues("post", "failure").Inc()
		return nil, err
	}
	return s.FinalizePost(ctx, actor, content)
}

// GenerateComment asks the actor's persona for a comment on the post and
// persists it as a top-level comment.
func (s *GenerationService) GenerateComment(ctx context.Context, actorID, postID uint) (*models.Comment, error) {
	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	stream, err := s.StreamComment(ctx, actor, post)
	if err != nil {
		return nil, err
	}
	content, err := drain(ctx, stream)
	if err != nil {
		middleware.GenerationRequests.WithLabelValues("comment", "failure").Inc()
		return nil, err
	}
	return s.FinalizeComment(ctx, actor, post, nil, content)
}

// GenerateReply asks the actor's persona for a reply to an existing comment
// and persists it under that parent.
func (s *GenerationService) GenerateReply(ctx context.Context, actorID, parentID uint) (*models.Comment, error) {
	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, parent.PostID)
	if err != nil {
		return nil, err
	}

	stream, err := s.StreamReply(ctx, actor, post, parent)
	if err != nil {
		return nil, err
	}
	content, err := drain(ctx, stream)
	if err != nil {
		middleware.GenerationRequests.WithLabelValues("reply", "failure").Inc()
		return nil, err
	}
	return s.FinalizeComment(ctx, actor, post, parent, content)
}

// StreamPost opens a fragment stream for a new post by the actor's persona.
// The caller owns the stream and finalizes with FinalizePost.
func (s *GenerationService) StreamPost(ctx context.Context, actor *models.Actor) (TextStream, error) {
	stream, err := s.client.ChatStream(ctx, actor.PersonaToken, prompt.PostMessage(), prompt.ForPost(actor))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	return stream, nil
}

// StreamComment opens a fragment stream for a comment on the post.
func (s *GenerationService) StreamComment(ctx context.Context, actor *models.Actor, post *models.Post) (TextStream, error) {
	stream, err := s.client.ChatStream(ctx, actor.PersonaToken, prompt.CommentMessage(post), prompt.ForComment(actor))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	return stream, nil
}

// StreamReply opens a fragment stream for a reply under the parent comment.
func (s *GenerationService) StreamReply(ctx context.Context, actor *models.Actor, post *models.Post, parent *models.Comment) (TextStream, error) {
	stream, err := s.client.ChatStream(ctx, actor.PersonaToken, prompt.ReplyMessage(post, parent), prompt.ForComment(actor))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	return stream, nil
}

// FinalizePost persists the accumulated content as the actor's post.
// Empty content after trimming persists nothing and returns ErrNoContent.
func (s *GenerationService) FinalizePost(ctx context.Context, actor *models.Actor, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		middleware.GenerationRequests.WithLabelValues("post", "empty").Inc()
		return nil, ErrNoContent
	}

	post := &models.Post{
		ActorID:     actor.ID,
		Content:     content,
		AIGenerated: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	middleware.GenerationRequests.WithLabelValues("post", "success").Inc()
	middleware.Logger.InfoContext(ctx, "generated post persisted",
		slog.Any("actor_id", actor.ID),
		slog.Any("post_id", post.ID),
		slog.Int("length", len(content)),
	)
	return post, nil
}

// FinalizeComment persists the accumulated content as a comment on the post,
// under parent when non-nil. Empty content returns ErrNoContent.
func (s *GenerationService) FinalizeComment(ctx context.Context, actor *models.Actor, post *models.Post, parent *models.Comment, content string) (*models.Comment, error) {
	intent := "comment"
	if parent != nil {
		intent = "reply"
	}

	content = strings.TrimSpace(content)
	if content == "" {
		middleware.GenerationRequests.WithLabelValues(intent, "empty").Inc()
		return nil, ErrNoContent
	}

	comment := &models.Comment{
		PostID:      post.ID,
		ActorID:     actor.ID,
		Content:     content,
		AIGenerated: true,
	}
	if parent != nil {
		if parent.PostID != post.ID {
			return nil, models.NewDataIntegrityError("Parent comment belongs to a different post")
		}
		comment.ParentID = &parent.ID
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	middleware.GenerationRequests.WithLabelValues(intent, "success").Inc()
	middleware.Logger.InfoContext(ctx, "generated comment persisted",
		slog.Any("actor_id", actor.ID),
		slog.Any("post_id", post.ID),
		slog.Any("comment_id", comment.ID),
		slog.Int("length", len(content)),
	)
	return comment, nil
}

// drain accumulates every fragment of the stream into one string. A stream
// error discards the partial text; partial generations are never persisted.
func drain(ctx context.Context, stream TextStream) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for fragment := range stream.Fragments() {
		middleware.GenerationFragments.Inc()
		sb.WriteString(fragment)
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	return sb.String(), nil
}
