// Package jobs runs backend work (metadata refreshes, pings) on a bounded
// worker pool and keeps the state of every task for later lookup.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrQueueFull  = errors.New("job queue is full")
)

// Handler executes one task. Returning helpers.Permanent(err) skips retries.
type Handler func(ctx context.Context, task models.MTask) (map[string]any, error)

type QueueConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	ResultTTL   time.Duration
}

// -----------------------------------------------------------------------------

type Queue struct {
	cfg      QueueConfig
	Logger   *logger.Logger
	handlers map[string]Handler
	pending  chan string

	mu    sync.RWMutex
	tasks map[string]*models.MTask
	now   func() time.Time
}

// -----------------------------------------------------------------------------

func NewQueue(cfg QueueConfig, log *logger.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}

	return &Queue{
		cfg:      cfg,
		Logger:   log,
		handlers: make(map[string]Handler),
		pending:  make(chan string, cfg.QueueSize),
		tasks:    make(map[string]*models.MTask),
		now:      time.Now,
	}
}

// Register must be called before Run.
func (q *Queue) Register(name string, h Handler) {
	q.handlers[name] = h
}

// -----------------------------------------------------------------------------

// Enqueue records a PENDING task and hands it to the workers without blocking.
func (q *Queue) Enqueue(name string, stockID int64) (string, error) {
	if _, ok := q.handlers[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	now := q.now().UTC()
	task := &models.MTask{
		TaskID:    uuid.NewString(),
		Name:      name,
		StockID:   stockID,
		State:     models.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	q.mu.Lock()
	q.pruneLocked(now)
	q.tasks[task.TaskID] = task
	q.mu.Unlock()

	select {
	case q.pending <- task.TaskID:
		q.Logger.Debug("Enqueued %s for stock #%d (task %s)", name, stockID, task.TaskID)
		return task.TaskID, nil
	default:
		q.mu.Lock()
		delete(q.tasks, task.TaskID)
		q.mu.Unlock()
		return "", ErrQueueFull
	}
}

func (q *Queue) pruneLocked(now time.Time) {
	for id, t := range q.tasks {
		if t.Done() && now.Sub(t.UpdatedAt) > q.cfg.ResultTTL {
			delete(q.tasks, id)
		}
	}
}

// -----------------------------------------------------------------------------

// Task returns a copy of the task state.
func (q *Queue) Task(taskID string) (models.MTask, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	t, ok := q.tasks[taskID]
	if !ok {
		return models.MTask{}, false
	}
	return *t, true
}

// Depth is the number of tasks waiting for a worker.
func (q *Queue) Depth() int {
	return len(q.pending)
}

// -----------------------------------------------------------------------------

// Run starts the workers and blocks until ctx is cancelled. It returns the
// context error that stopped them.
func (q *Queue) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < q.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			return q.work(gctx, worker)
		})
	}

	q.Logger.Info("Job queue running with %d workers", q.cfg.Workers)
	return g.Wait()
}

func (q *Queue) work(ctx context.Context, worker int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-q.pending:
			q.execute(ctx, worker, id)
		}
	}
}

// -----------------------------------------------------------------------------

func (q *Queue) execute(ctx context.Context, worker int, id string) {
	task, ok := q.Task(id)
	if !ok {
		return
	}
	handler := q.handlers[task.Name]

	result, err := helpers.RetryWithBackoff(ctx, q.cfg.MaxAttempts, q.cfg.RetryDelay,
		func(attempt int) (map[string]any, error) {
			snapshot := q.update(id, func(t *models.MTask) {
				t.State = models.TaskStarted
				t.Attempts = attempt
			})
			return handler(ctx, snapshot)
		},
		func(attempt int, err error, delay time.Duration) {
			q.Logger.Warning("%s task %s failed (attempt %d/%d): %v. Retrying in %v",
				task.Name, id, attempt, q.cfg.MaxAttempts, err, delay)
			q.update(id, func(t *models.MTask) {
				t.State = models.TaskRetry
				t.Error = err.Error()
			})
		},
	)

	if err != nil {
		q.Logger.Error("%s task %s failed on worker %d: %v", task.Name, id, worker, err)
		q.update(id, func(t *models.MTask) {
			t.State = models.TaskFailure
			t.Error = err.Error()
		})
		return
	}

	q.update(id, func(t *models.MTask) {
		t.State = models.TaskSuccess
		t.Result = result
		t.Error = ""
	})
}

func (q *Queue) update(id string, fn func(t *models.MTask)) models.MTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return models.MTask{TaskID: id}
	}
	fn(t)
	t.UpdatedAt = q.now().UTC()
	return *t
}
