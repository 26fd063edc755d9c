package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of AI work queued on behalf of a view controller.
type Task struct {
	ID       string
	Kind     string
	UserID   string
	Run      func(context.Context) error
	Enqueued time.Time
}

// Observer receives the outcome of every finished task.
type Observer func(kind string, duration time.Duration, err error)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	Timeout    time.Duration
	Observer   Observer
	Logger     *zap.Logger
}

// Queue is an in-memory worker pool. Tasks are not retried: a failure is
// reported back through the task's own closure.
type Queue struct {
	name string

	workers    int
	bufferSize int
	timeout    time.Duration
	observer   Observer
	logger     *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue.
func NewQueue(name string, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		timeout:    cfg.Timeout,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		tasks:      make(chan Task, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels running tasks and waits for the workers to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a task onto the queue. It blocks while the buffer is full
// unless the queue is stopped.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if task.Run == nil {
		return fmt.Errorf("queue %s: task %s has no body", q.name, task.ID)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.execute(workerID, task)
		}
	}
}

func (q *Queue) execute(workerID int, task Task) {
	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	started := time.Now()
	err := q.safeRun(ctx, task)
	elapsed := time.Since(started)

	if q.observer != nil {
		q.observer(task.Kind, elapsed, err)
	}
	if err != nil {
		q.logger.Sugar().Warnw("task failed", "queue", q.name, "worker", workerID, "task_id", task.ID, "kind", task.Kind, "user_id", task.UserID, "duration", elapsed, "error", err)
		return
	}
	q.logger.Sugar().Debugw("task finished", "queue", q.name, "worker", workerID, "task_id", task.ID, "kind", task.Kind, "duration", elapsed)
}

func (q *Queue) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()
	return task.Run(ctx)
}
