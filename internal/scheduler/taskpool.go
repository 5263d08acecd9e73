// Package scheduler drives the simulated engagement cycles: cron-triggered
// post, comment, and like generation fanned out over a small worker pool.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"murmur/internal/middleware"

	"github.com/google/uuid"
)

// Task is a named unit of work submitted to the pool.
type Task struct {
	Name string
	Kind string
	Run  func(ctx context.Context)
}

// TaskPool executes tasks on a fixed set of workers. Submissions may carry a
// delay; delayed tasks are enqueued by a timer and still run on the pool.
// A panicking task is recovered and logged, never taking a worker down.
type TaskPool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// NewTaskPool starts workers goroutines draining the task queue.
func NewTaskPool(workers int) *TaskPool {
	if workers <= 0 {
		workers = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &TaskPool{
		tasks:  make(chan Task, 256),
		timers: make(map[*time.Timer]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *TaskPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.execute(task)
	}
}

func (p *TaskPool) execute(task Task) {
	ctx := middleware.WithTaskID(p.ctx, uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			middleware.SchedulerTasks.WithLabelValues(task.Kind, "panic").Inc()
			middleware.Logger.ErrorContext(ctx, "scheduler task panicked",
				slog.String("task", task.Name),
				slog.Any("panic", r),
			)
		}
	}()
	task.Run(ctx)
}

// Submit enqueues the task after delay. A zero delay enqueues immediately.
// Submissions after Stop are dropped.
func (p *TaskPool) Submit(delay time.Duration, task Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if delay <= 0 {
		p.enqueueLocked(task)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.timers, timer)
		if p.stopped {
			return
		}
		p.enqueueLocked(task)
	})
	p.timers[timer] = struct{}{}
}

// enqueueLocked sends on the task channel while holding the mutex, so Stop
// cannot close the channel mid-send. Workers never take the mutex, so a full
// queue still drains.
func (p *TaskPool) enqueueLocked(task Task) {
	select {
	case p.tasks <- task:
	case <-p.ctx.Done():
	}
}

// Stop cancels pending timers, closes the queue, and waits for in-flight
// tasks to finish.
func (p *TaskPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for timer := range p.timers {
		timer.Stop()
	}
	p.timers = nil
	p.mu.Unlock()

	p.cancel()
	close(p.tasks)
	p.wg.Wait()
}
