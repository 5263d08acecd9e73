package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
)

// MaxTreeDepth caps how far Tree descends into nested replies. Replies below
// this depth still exist and are reachable through ListReplies.
const MaxTreeDepth = 5

// CommentNode is a comment plus its nested replies, used by the tree view.
type CommentNode struct {
	*models.Comment
	Replies []*CommentNode `json:"replies"`
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a top-level comment to a post. The post's comment_count
// is incremented in the same transaction as the insert.
func (s *CommentService) CreateComment(ctx context.Context, actorID, postID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content cannot be empty")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		ActorID: actorID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// CreateReply adds a reply under an existing comment. The parent must belong
// to the same post; a mismatch is a data integrity violation, never silently
// corrected.
func (s *CommentService) CreateReply(ctx context.Context, actorID, postID, parentID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content cannot be empty")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != postID {
		return nil, models.NewDataIntegrityError("Parent comment belongs to a different post")
	}

	comment := &models.Comment{
		PostID:   postID,
		ActorID:  actorID,
		ParentID: &parentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// Tree returns the post's comments as a forest of nested nodes, truncated at
// MaxTreeDepth levels. Ordering is oldest first at every level.
func (s *CommentService) Tree(ctx context.Context, postID uint) ([]*CommentNode, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	roots, err := s.commentRepo.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*CommentNode, 0, len(roots))
	for _, c := range roots {
		node, err := s.buildSubtree(ctx, c, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (s *CommentService) buildSubtree(ctx context.Context, comment *models.Comment, depth int) (*CommentNode, error) {
	node := &CommentNode{Comment: comment, Replies: []*CommentNode{}}
	if depth >= MaxTreeDepth {
		return node, nil
	}

	replies, err := s.commentRepo.ListReplies(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		child, err := s.buildSubtree(ctx, r, depth+1)
		if err != nil {
			return nil, err
		}
		node.Replies = append(node.Replies, child)
	}
	return node, nil
}

// ListReplies returns the direct replies of a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, parentID)
}
