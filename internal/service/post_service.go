package service

import (
	"context"
	"log/slog"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
)

const defaultFeedLimit = 20

type PostService struct {
	postRepo  repository.PostRepository
	actorRepo repository.ActorRepository
}

func NewPostService(postRepo repository.PostRepository, actorRepo repository.ActorRepository) *PostService {
	return &PostService{
		postRepo:  postRepo,
		actorRepo: actorRepo,
	}
}

// LikeResult reports what a like or unlike actually did. Changed is false
// when the operation was a no-op (double like, unlike without a like).
type LikeResult struct {
	Changed bool         `json:"changed"`
	Post    *models.Post `json:"post"`
}

func (s *PostService) CreatePost(ctx context.Context, actorID uint, content, topic string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Post content cannot be empty")
	}

	if _, err := s.actorRepo.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	post := &models.Post{
		ActorID: actorID,
		Content: content,
		Topic:   topic,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		p, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	// Only the default feed page is cached; ad-hoc limits hit the database.
	if limit != defaultFeedLimit {
		return s.postRepo.ListRecent(ctx, limit)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.RecentPostsKey, &posts, cache.RecentPostsTTL, func() error {
		fetched, err := s.postRepo.ListRecent(ctx, limit)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	return posts, err
}

func (s *PostService) ListByActor(ctx context.Context, actorID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if _, err := s.actorRepo.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByActorID(ctx, actorID, limit, offset)
}

// Like records an actor's like on a post. Liking an already liked post is a
// no-op reported through LikeResult.Changed.
func (s *PostService) Like(ctx context.Context, actorID, postID uint) (*LikeResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	changed, err := s.postRepo.Like(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	if !changed {
		middleware.Logger.DebugContext(ctx, "duplicate like ignored",
			slog.Any("actor_id", actorID), slog.Any("post_id", postID))
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Changed: changed, Post: post}, nil
}

// Unlike removes an actor's like. Unliking a post that was never liked is a
// no-op reported through LikeResult.Changed.
func (s *PostService) Unlike(ctx context.Context, actorID, postID uint) (*LikeResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	changed, err := s.postRepo.Unlike(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Changed: changed, Post: post}, nil
}

func (s *PostService) IsLiked(ctx context.Context, actorID, postID uint) (bool, error) {
	return s.postRepo.IsLiked(ctx, actorID, postID)
}
