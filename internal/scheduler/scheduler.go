package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/service"

	"github.com/robfig/cron/v3"
)

const (
	// postSampleFraction is the share of the actor roster asked to post each
	// post cycle, with a floor of one actor.
	postSampleFraction = 0.2

	// likeCyclePostCount caps how many recent posts a like cycle touches.
	likeCyclePostCount = 10
)

// Timing spreads a cycle's tasks over time so activity does not land in a
// single burst. Tests shrink Unit to keep cycles fast.
type Timing struct {
	// Unit scales every computed delay. One second in production.
	Unit time.Duration
	// Synchronous runs tasks inline instead of submitting them to the pool.
	Synchronous bool
}

// Scheduler owns the cron triggers and the engagement cycles they fire.
// Cycles are stateless: every run re-reads actors and posts from storage.
type Scheduler struct {
	cfg       *config.Config
	gen       *service.GenerationService
	actorRepo repository.ActorRepository
	postRepo  repository.PostRepository
	selector  *Selector
	pool      *TaskPool
	timing    Timing
	cron      *cron.Cron
}

// New builds a scheduler with production timing. The pool is started
// immediately; cron triggers start on Start.
func New(
	cfg *config.Config,
	gen *service.GenerationService,
	actorRepo repository.ActorRepository,
	postRepo repository.PostRepository,
) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		gen:       gen,
		actorRepo: actorRepo,
		postRepo:  postRepo,
		selector:  NewSelector(time.Now().UnixNano()),
		pool:      NewTaskPool(cfg.SchedulerWorkers),
		timing:    Timing{Unit: time.Second},
	}
}

// SetSelector replaces the randomness source; used by tests for determinism.
func (s *Scheduler) SetSelector(sel *Selector) { s.selector = sel }

// SetTiming replaces the delay scaling; used by tests.
func (s *Scheduler) SetTiming(t Timing) { s.timing = t }

// Start registers the cron triggers and begins firing cycles. Disabled
// cycles stay registered so a config reload only has to flip the flag.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(s.cfg.PostGenerationCron, func() {
		s.runCycle("post", s.RunPostCycle)
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(s.cfg.CommentGenerationCron, func() {
		s.runCycle("comment", s.RunCommentCycle)
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(s.cfg.LikeGenerationCron, func() {
		s.runCycle("like", s.RunLikeCycle)
	}); err != nil {
		return err
	}

	c.Start()
	s.cron = c
	middleware.Logger.Info("scheduler started",
		slog.String("post_cron", s.cfg.PostGenerationCron),
		slog.String("comment_cron", s.cfg.CommentGenerationCron),
		slog.String("like_cron", s.cfg.LikeGenerationCron),
		slog.Int("workers", s.cfg.SchedulerWorkers),
	)
	return nil
}

// Stop halts the cron triggers and drains the worker pool.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.pool.Stop()
}

func (s *Scheduler) runCycle(kind string, cycle func(ctx context.Context) error) {
	ctx := context.Background()
	if err := cycle(ctx); err != nil {
		middleware.SchedulerCycles.WithLabelValues(kind, "failure").Inc()
		middleware.Logger.ErrorContext(ctx, "scheduler cycle failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return
	}
	middleware.SchedulerCycles.WithLabelValues(kind, "success").Inc()
}

// RunPostCycle samples roughly a fifth of the roster and schedules one post
// generation per sampled actor, staggered so posts trickle in over the hour
// rather than landing at once.
func (s *Scheduler) RunPostCycle(ctx context.Context) error {
	if !s.cfg.PostGenerationEnabled {
		middleware.Logger.DebugContext(ctx, "post generation disabled, skipping cycle")
		return nil
	}

	actors, err := s.actorRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(actors) == 0 {
		middleware.Logger.InfoContext(ctx, "post cycle skipped, no actors")
		return nil
	}

	picked := s.selector.SampleFraction(len(actors), postSampleFraction)
	middleware.Logger.InfoContext(ctx, "post cycle scheduled",
		slog.Int("actors", len(actors)),
		slog.Int("selected", len(picked)),
	)

	for i, idx := range picked {
		actor := actors[idx]
		delay := time.Duration(i*10) * s.timing.Unit
		s.submit(delay, Task{
			Name: "generate-post",
			Kind: "post",
			Run: func(taskCtx context.Context) {
				s.generatePost(taskCtx, actor.ID)
			},
		})
	}
	return nil
}

// RunCommentCycle picks one random recent post and has one to three actors,
// author excluded, comment on it with per-actor delays.
func (s *Scheduler) RunCommentCycle(ctx context.Context) error {
	if !s.cfg.CommentGenerationEnabled {
		middleware.Logger.DebugContext(ctx, "comment generation disabled, skipping cycle")
		return nil
	}

	posts, err := s.postRepo.ListRecent(ctx, likeCyclePostCount)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		middleware.Logger.InfoContext(ctx, "comment cycle skipped, no posts")
		return nil
	}
	post := posts[s.selector.PickOne(len(posts))]

	candidates, err := s.actorRepo.ListExcluding(ctx, post.ActorID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		middleware.Logger.InfoContext(ctx, "comment cycle skipped, no eligible commenters",
			slog.Any("post_id", post.ID))
		return nil
	}

	count := s.selector.IntBetween(1, 3)
	picked := s.selector.Sample(len(candidates), count)
	middleware.Logger.InfoContext(ctx, "comment cycle scheduled",
		slog.Any("post_id", post.ID),
		slog.Int("commenters", len(picked)),
	)

	for i, idx := range picked {
		actor := candidates[idx]
		delay := time.Duration((i+1)*s.selector.IntBetween(1, 5)) * s.timing.Unit
		s.submit(delay, Task{
			Name: "generate-comment",
			Kind: "comment",
			Run: func(taskCtx context.Context) {
				s.generateComment(taskCtx, actor.ID, post.ID)
			},
		})
	}
	return nil
}

// RunLikeCycle walks up to ten recent posts and, per post, lets one to five
// non-author actors flip a coin on liking it. An actor never likes the same
// post twice; the storage layer guarantees that even across cycles.
func (s *Scheduler) RunLikeCycle(ctx context.Context) error {
	if !s.cfg.LikeGenerationEnabled {
		middleware.Logger.DebugContext(ctx, "like generation disabled, skipping cycle")
		return nil
	}

	posts, err := s.postRepo.ListRecent(ctx, likeCyclePostCount)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		middleware.Logger.InfoContext(ctx, "like cycle skipped, no posts")
		return nil
	}

	scheduled := 0
	for _, post := range posts {
		candidates, err := s.actorRepo.ListExcluding(ctx, post.ActorID)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			continue
		}

		count := s.selector.IntBetween(1, 5)
		picked := s.selector.Sample(len(candidates), count)
		for i, idx := range picked {
			if !s.selector.CoinFlip(0.5) {
				continue
			}
			actor := candidates[idx]
			postID := post.ID
			delay := time.Duration(s.selector.IntBetween(1, 3)*(i+1)) * s.timing.Unit
			s.submit(delay, Task{
				Name: "record-like",
				Kind: "like",
				Run: func(taskCtx context.Context) {
					s.recordLike(taskCtx, actor.ID, postID)
				},
			})
			scheduled++
		}
	}

	middleware.Logger.InfoContext(ctx, "like cycle scheduled",
		slog.Int("posts", len(posts)),
		slog.Int("likes", scheduled),
	)
	return nil
}

// TriggerPost generates a post for the given actor synchronously, bypassing
// the cron cadence. Used by the manual trigger endpoint.
func (s *Scheduler) TriggerPost(ctx context.Context, actorID uint) (*models.Post, error) {
	if !s.cfg.PostGenerationEnabled {
		return nil, models.NewValidationError("Post generation is disabled")
	}
	return s.gen.GeneratePost(ctx, actorID)
}

func (s *Scheduler) submit(delay time.Duration, task Task) {
	if s.timing.Synchronous {
		task.Run(middleware.WithTaskID(context.Background(), task.Name))
		return
	}
	s.pool.Submit(delay, task)
}

func (s *Scheduler) generatePost(ctx context.Context, actorID uint) {
	post, err := s.gen.GeneratePost(ctx, actorID)
	if err != nil {
		s.taskFailed(ctx, "post", actorID, err)
		return
	}
	middleware.SchedulerTasks.WithLabelValues("post", "success").Inc()
	middleware.Logger.InfoContext(ctx, "scheduled post generated",
		slog.Any("actor_id", actorID),
		slog.Any("post_id", post.ID),
	)
}

func (s *Scheduler) generateComment(ctx context.Context, actorID, postID uint) {
	comment, err := s.gen.GenerateComment(ctx, actorID, postID)
	if err != nil {
		s.taskFailed(ctx, "comment", actorID, err)
		return
	}
	middleware.SchedulerTasks.WithLabelValues("comment", "success").Inc()
	middleware.Logger.InfoContext(ctx, "scheduled comment generated",
		slog.Any("actor_id", actorID),
		slog.Any("post_id", postID),
		slog.Any("comment_id", comment.ID),
	)
}

func (s *Scheduler) recordLike(ctx context.Context, actorID, postID uint) {
	changed, err := s.postRepo.Like(ctx, actorID, postID)
	if err != nil {
		s.taskFailed(ctx, "like", actorID, err)
		return
	}
	outcome := "success"
	if !changed {
		outcome = "duplicate"
	}
	middleware.SchedulerTasks.WithLabelValues("like", outcome).Inc()
}

// taskFailed logs and counts a single task failure. One actor's failure
// never aborts the rest of the cycle's tasks.
func (s *Scheduler) taskFailed(ctx context.Context, kind string, actorID uint, err error) {
	outcome := "failure"
	if errors.Is(err, service.ErrNoContent) {
		outcome = "no_content"
	}
	middleware.SchedulerTasks.WithLabelValues(kind, outcome).Inc()
	middleware.Logger.WarnContext(ctx, "scheduler task failed",
		slog.String("kind", kind),
		slog.Any("actor_id", actorID),
		slog.String("error", err.Error()),
	)
}
