package service

import (
	"context"
	"errors"
	"testing"

	"murmur/internal/genclient"
	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// actorRepoStub is a stub for repository.ActorRepository.
type actorRepoStub struct {
	createFn           func(context.Context, *models.Actor) error
	getByIDFn          func(context.Context, uint) (*models.Actor, error)
	getByTokenFn       func(context.Context, string) (*models.Actor, error)
	listFn             func(context.Context) ([]*models.Actor, error)
	listExcludingFn    func(context.Context, uint) ([]*models.Actor, error)
	updateFn           func(context.Context, *models.Actor) error
	replaceInterestsFn func(context.Context, uint, []models.Interest) error
}

func (s *actorRepoStub) Create(ctx context.Context, actor *models.Actor) error {
	return s.createFn(ctx, actor)
}
func (s *actorRepoStub) GetByID(ctx context.Context, id uint) (*models.Actor, error) {
	return s.getByIDFn(ctx, id)
}
func (s *actorRepoStub) GetByToken(ctx context.Context, token string) (*models.Actor, error) {
	return s.getByTokenFn(ctx, token)
}
func (s *actorRepoStub) List(ctx context.Context) ([]*models.Actor, error) {
	return s.listFn(ctx)
}
func (s *actorRepoStub) ListExcluding(ctx context.Context, excludeID uint) ([]*models.Actor, error) {
	return s.listExcludingFn(ctx, excludeID)
}
func (s *actorRepoStub) Update(ctx context.Context, actor *models.Actor) error {
	return s.updateFn(ctx, actor)
}
func (s *actorRepoStub) ReplaceInterests(ctx context.Context, actorID uint, interests []models.Interest) error {
	return s.replaceInterestsFn(ctx, actorID, interests)
}

func noopActorRepo() *actorRepoStub {
	return &actorRepoStub{
		createFn:           func(_ context.Context, _ *models.Actor) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.Actor, error) { return &models.Actor{ID: id}, nil },
		getByTokenFn:       func(_ context.Context, _ string) (*models.Actor, error) { return &models.Actor{ID: 1}, nil },
		listFn:             func(_ context.Context) ([]*models.Actor, error) { return nil, nil },
		listExcludingFn:    func(_ context.Context, _ uint) ([]*models.Actor, error) { return nil, nil },
		updateFn:           func(_ context.Context, _ *models.Actor) error { return nil },
		replaceInterestsFn: func(_ context.Context, _ uint, _ []models.Interest) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listRecentFn   func(context.Context, int) ([]*models.Post, error)
	getByActorIDFn func(context.Context, uint, int, int) ([]*models.Post, error)
	isLikedFn      func(context.Context, uint, uint) (bool, error)
	likeFn         func(context.Context, uint, uint) (bool, error)
	unlikeFn       func(context.Context, uint, uint) (bool, error)
	countLikesFn   func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listRecentFn(ctx, limit)
}
func (s *postRepoStub) GetByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByActorIDFn(ctx, actorID, limit, offset)
}
func (s *postRepoStub) IsLiked(ctx context.Context, actorID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, actorID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, actorID, postID uint) (bool, error) {
	return s.likeFn(ctx, actorID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, actorID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, actorID, postID)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:       func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listRecentFn:   func(_ context.Context, _ int) ([]*models.Post, error) { return nil, nil },
		getByActorIDFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		isLikedFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		countLikesFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn func(context.Context, uint) ([]*models.Comment, error)
	listRepliesFn  func(context.Context, uint) ([]*models.Comment, error)
	countByPostFn  func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listTopLevelFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		listRepliesFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		countByPostFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// fakeStream is an in-memory TextStream fed from a fixed fragment list.
type fakeStream struct {
	fragments chan string
	err       error
	closed    bool
}

func newFakeStream(err error, fragments ...string) *fakeStream {
	ch := make(chan string, len(fragments))
	for _, f := range fragments {
		ch <- f
	}
	close(ch)
	return &fakeStream{fragments: ch, err: err}
}

func (s *fakeStream) Fragments() <-chan string { return s.fragments }

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) Close() error { s.closed = true; return nil }

// personaStub is a stub for PersonaClient.
type personaStub struct {
	profileFn    func(context.Context, string) (*genclient.Profile, error)
	interestsFn  func(context.Context, string) ([]genclient.Interest, error)
	chatFn       func(context.Context, string, string, string) (string, error)
	chatStreamFn func(context.Context, string, string, string) (TextStream, error)
}

func (s *personaStub) Profile(ctx context.Context, token string) (*genclient.Profile, error) {
	return s.profileFn(ctx, token)
}
func (s *personaStub) Interests(ctx context.Context, token string) ([]genclient.Interest, error) {
	return s.interestsFn(ctx, token)
}
func (s *personaStub) Chat(ctx context.Context, token, message, systemPrompt string) (string, error) {
	return s.chatFn(ctx, token, message, systemPrompt)
}
func (s *personaStub) ChatStream(ctx context.Context, token, message, systemPrompt string) (TextStream, error) {
	return s.chatStreamFn(ctx, token, message, systemPrompt)
}

func noopPersona() *personaStub {
	return &personaStub{
		profileFn: func(_ context.Context, _ string) (*genclient.Profile, error) {
			return &genclient.Profile{Name: "Stub"}, nil
		},
		interestsFn: func(_ context.Context, _ string) ([]genclient.Interest, error) { return nil, nil },
		chatFn:      func(_ context.Context, _, _, _ string) (string, error) { return "", nil },
		chatStreamFn: func(_ context.Context, _, _, _ string) (TextStream, error) {
			return newFakeStream(nil), nil
		},
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}
