package server

import (
	"context"
	"errors"
	"testing"

	"murmur/internal/config"
	"murmur/internal/genclient"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/scheduler"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubStream is an in-memory TextStream fed from a fixed fragment list.
type stubStream struct {
	fragments chan string
}

func newStubStream(parts ...string) *stubStream {
	ch := make(chan string, len(parts))
	for _, p := range parts {
		ch <- p
	}
	close(ch)
	return &stubStream{fragments: ch}
}

func (s *stubStream) Fragments() <-chan string { return s.fragments }

func (s *stubStream) Err() error { return nil }

func (s *stubStream) Close() error { return nil }

// stubPersona answers every generation request with a fixed text.
type stubPersona struct {
	text string
	fail bool
}

func (s *stubPersona) Profile(_ context.Context, _ string) (*genclient.Profile, error) {
	return &genclient.Profile{Name: "Stub"}, nil
}

func (s *stubPersona) Interests(_ context.Context, _ string) ([]genclient.Interest, error) {
	return nil, nil
}

func (s *stubPersona) Chat(_ context.Context, _, _, _ string) (string, error) {
	if s.fail {
		return "", errors.New("persona unreachable")
	}
	return s.text, nil
}

func (s *stubPersona) ChatStream(_ context.Context, _, _, _ string) (service.TextStream, error) {
	if s.fail {
		return nil, errors.New("persona unreachable")
	}
	if s.text == "" {
		return newStubStream(), nil
	}
	return newStubStream(s.text), nil
}

func testServerConfig() *config.Config {
	return &config.Config{
		Port:                     "0",
		PersonaBaseURL:           "http://localhost:8002",
		PostGenerationEnabled:    true,
		PostGenerationCron:       "0 0 * * * *",
		CommentGenerationEnabled: true,
		CommentGenerationCron:    "0 30 * * * *",
		LikeGenerationEnabled:    true,
		LikeGenerationCron:       "0 15 * * * *",
		SchedulerWorkers:         1,
	}
}

// newTestServer wires a server against an in-memory database and the given
// persona client, returning a routed Fiber app for request tests.
func newTestServer(t *testing.T, client service.PersonaClient) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Actor{},
		&models.Interest{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	))

	actorRepo := repository.NewActorRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config:      testServerConfig(),
		db:          db,
		actorRepo:   actorRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
	s.actorService = service.NewActorService(actorRepo, client)
	s.postService = service.NewPostService(postRepo, actorRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.genService = service.NewGenerationService(client, actorRepo, postRepo, commentRepo)
	s.scheduler = scheduler.New(s.config, s.genService, actorRepo, postRepo)
	t.Cleanup(s.scheduler.Stop)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func seedActor(t *testing.T, db *gorm.DB, name string) *models.Actor {
	t.Helper()
	actor := &models.Actor{
		Name:         name,
		Email:        name + "@example.com",
		PersonaToken: "token-" + name,
	}
	require.NoError(t, db.Create(actor).Error)
	return actor
}

func seedPost(t *testing.T, db *gorm.DB, actorID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{ActorID: actorID, Content: content}
	require.NoError(t, db.Create(post).Error)
	return post
}

func seedComment(t *testing.T, db *gorm.DB, postID, actorID uint, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: postID, ActorID: actorID, Content: content}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error)
	return comment
}
