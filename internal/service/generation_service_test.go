package service

import (
	"context"
	"errors"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationService_GeneratePost_StreamingPersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "Hello", " world"), nil
	}

	var created []*models.Post
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = uint(len(created) + 1)
		created = append(created, post)
		return nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), postRepo, noopCommentRepo())

	post, err := svc.GeneratePost(ctx, 7)
	require.NoError(t, err)

	// Two fragments, one persisted post with the full accumulated text.
	require.Len(t, created, 1)
	assert.Equal(t, "Hello world", post.Content)
	assert.Equal(t, uint(7), post.ActorID)
	assert.True(t, post.AIGenerated)
}

func TestGenerationService_GeneratePost_EmptyStream(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil), nil
	}

	createCalls := 0
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error {
		createCalls++
		return nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), postRepo, noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Zero(t, createCalls, "nothing may be persisted for an empty generation")
}

func TestGenerationService_GeneratePost_WhitespaceOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "  ", "\n\t"), nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), noopPostRepo(), noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestGenerationService_GeneratePost_ClientError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return nil, errors.New("connection refused")
	}

	svc := NewGenerationService(persona, noopActorRepo(), noopPostRepo(), noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestGenerationService_GeneratePost_MidStreamError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(errors.New("connection reset"), "partial "), nil
	}

	createCalls := 0
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error {
		createCalls++
		return nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), postRepo, noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Zero(t, createCalls, "partial generations must be discarded")
}

func TestGenerationService_GeneratePost_PersistenceErrorIsNotNoContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "fine content"), nil
	}

	dbErr := errors.New("disk full")
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error { return dbErr }

	svc := NewGenerationService(persona, noopActorRepo(), postRepo, noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNoContent)
}

func TestGenerationService_GenerateComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "totally ", "agree"), nil
	}

	var created *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, comment *models.Comment) error {
		comment.ID = 42
		created = comment
		return nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), noopPostRepo(), commentRepo)

	comment, err := svc.GenerateComment(ctx, 3, 9)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "totally agree", comment.Content)
	assert.Equal(t, uint(9), comment.PostID)
	assert.Equal(t, uint(3), comment.ActorID)
	assert.Nil(t, comment.ParentID)
	assert.True(t, comment.AIGenerated)
}

func TestGenerationService_GenerateReply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "good point"), nil
	}

	parent := &models.Comment{ID: 5, PostID: 9, Content: "parent"}
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		require.Equal(t, parent.ID, id)
		return parent, nil
	}
	var created *models.Comment
	commentRepo.createFn = func(_ context.Context, comment *models.Comment) error {
		created = comment
		return nil
	}

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id}, nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), postRepo, commentRepo)

	reply, err := svc.GenerateReply(ctx, 3, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
	assert.Equal(t, parent.PostID, reply.PostID)
}

func TestGenerationService_StreamReplyTwoPhase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return newFakeStream(nil, "well ", "said"), nil
	}

	var created *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, comment *models.Comment) error {
		created = comment
		return nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), noopPostRepo(), commentRepo)

	actor := &models.Actor{ID: 4}
	post := &models.Post{ID: 9}
	parent := &models.Comment{ID: 5, PostID: 9, Content: "parent"}

	stream, err := svc.StreamReply(ctx, actor, post, parent)
	require.NoError(t, err)

	var accumulated string
	for fragment := range stream.Fragments() {
		accumulated += fragment
	}
	require.NoError(t, stream.Err())
	require.NoError(t, stream.Close())

	// Nothing is persisted until the caller finalizes the drained text.
	require.Nil(t, created)

	reply, err := svc.FinalizeComment(ctx, actor, post, parent, accumulated)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "well said", reply.Content)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
	assert.True(t, reply.AIGenerated)
}

func TestGenerationService_FinalizeComment_ParentPostMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewGenerationService(noopPersona(), noopActorRepo(), noopPostRepo(), noopCommentRepo())

	actor := &models.Actor{ID: 1}
	post := &models.Post{ID: 2}
	parent := &models.Comment{ID: 3, PostID: 99}

	_, err := svc.FinalizeComment(ctx, actor, post, parent, "content")
	assert.True(t, models.IsDataIntegrity(err))
}

func TestGenerationService_StreamClosedAfterDrain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stream := newFakeStream(nil, "text")
	persona := noopPersona()
	persona.chatStreamFn = func(_ context.Context, _, _, _ string) (TextStream, error) {
		return stream, nil
	}

	svc := NewGenerationService(persona, noopActorRepo(), noopPostRepo(), noopCommentRepo())

	_, err := svc.GeneratePost(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stream.closed)
}
