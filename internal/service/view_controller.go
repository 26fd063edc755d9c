package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/jobs"
	"github.com/noah-isme/edupro-navigator/pkg/middleware/requestid"
)

type taskQueue interface {
	Enqueue(task jobs.Task) error
}

// WorkflowFunc is the body of one submission.
type WorkflowFunc func(ctx context.Context) (interface{}, error)

type viewKey struct {
	userID string
	page   models.ViewPage
}

type outcome struct {
	result interface{}
	err    error
}

// ViewRegistry holds one idle/loading/result/error controller per user and
// page. A page accepts one submission at a time.
type ViewRegistry struct {
	queue  taskQueue
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	views map[viewKey]*models.ViewState
}

// NewViewRegistry constructs a registry running work on queue.
func NewViewRegistry(queue taskQueue, logger *zap.Logger) *ViewRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewRegistry{
		queue:  queue,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		views:  make(map[viewKey]*models.ViewState),
	}
}

// State returns a snapshot of the page controller.
func (r *ViewRegistry) State(userID string, page models.ViewPage) models.ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.views[viewKey{userID, page}]; ok {
		return *state
	}
	return models.ViewState{Page: page, Status: models.ViewIdle}
}

// Reset returns the page to idle. A page still loading cannot be reset.
func (r *ViewRegistry) Reset(userID string, page models.ViewPage) (models.ViewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := viewKey{userID, page}
	if state, ok := r.views[key]; ok && state.Status == models.ViewLoading {
		return *state, appErrors.Clone(appErrors.ErrControllerBusy, "")
	}
	delete(r.views, key)
	return models.ViewState{Page: page, Status: models.ViewIdle}, nil
}

// Submit moves the page to loading and runs fn on the task queue. The work
// is detached from ctx: if the caller goes away the task still finishes and
// the page records its outcome. Submit waits for the outcome while ctx is live.
func (r *ViewRegistry) Submit(ctx context.Context, userID string, page models.ViewPage, fn WorkflowFunc) (interface{}, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !page.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown page")
	}
	key := viewKey{userID, page}
	if err := r.begin(key); err != nil {
		return nil, err
	}

	done := make(chan outcome, 1)
	reqID := requestid.FromContext(ctx)
	task := jobs.Task{
		ID:     uuid.NewString(),
		Kind:   string(page),
		UserID: userID,
		Run: func(taskCtx context.Context) (err error) {
			var result interface{}
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%s workflow panicked: %v", page, p)
				}
				r.finish(key, result, err)
				done <- outcome{result: result, err: err}
			}()
			result, err = fn(requestid.WithValue(taskCtx, reqID))
			return err
		},
	}

	if err := r.queue.Enqueue(task); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "workflow queue unavailable")
		r.finish(key, nil, wrapped)
		return nil, wrapped
	}

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		r.logger.Info("caller left before workflow finished", zap.String("user_id", userID), zap.String("page", string(page)))
		return nil, ctx.Err()
	}
}

func (r *ViewRegistry) begin(key viewKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.views[key]; ok && state.Status == models.ViewLoading {
		return appErrors.Clone(appErrors.ErrControllerBusy, "")
	}
	started := r.now()
	r.views[key] = &models.ViewState{Page: key.page, Status: models.ViewLoading, StartedAt: &started}
	return nil
}

func (r *ViewRegistry) finish(key viewKey, result interface{}, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.views[key]
	if !ok {
		state = &models.ViewState{Page: key.page}
		r.views[key] = state
	}
	finished := r.now()
	state.FinishedAt = &finished
	if err != nil {
		appErr := appErrors.FromError(err)
		state.Status = models.ViewError
		state.Result = nil
		state.Error = &models.ViewFailure{Code: appErr.Code, Message: appErr.Message, Retryable: appErrors.Recoverable(err)}
		return
	}
	state.Status = models.ViewResult
	state.Result = result
	state.Error = nil
}
