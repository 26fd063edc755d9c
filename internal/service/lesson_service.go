package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type lessonRepository interface {
	List(ctx context.Context, userID string, filter models.ScopeFilter, limit int) ([]models.Lesson, error)
	FindByID(ctx context.Context, userID, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	CreateWithHistory(ctx context.Context, lesson *models.Lesson, entry *models.HistoryEntry) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, userID, id string) error
}

// LessonService manages the lesson bank.
type LessonService struct {
	repo      lessonRepository
	notifier  changeNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonRepository, notifier changeNotifier, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &LessonService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// List returns lessons newest planned first, optionally for one class.
func (s *LessonService) List(ctx context.Context, userID, classID string) ([]models.Lesson, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lessons, err := s.repo.List(ctx, userID, scope(classID), 0)
	if err != nil {
		return nil, storeError(err, "lessons", "list")
	}
	return lessons, nil
}

// Get returns one lesson.
func (s *LessonService) Get(ctx context.Context, userID, id string) (*models.Lesson, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lesson, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "lesson", "load")
	}
	return lesson, nil
}

// Create saves a lesson written by hand.
func (s *LessonService) Create(ctx context.Context, userID string, req models.LessonInput) (*models.Lesson, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "lesson")
	}
	lesson := &models.Lesson{
		UserID:  userID,
		ClassID: optionalClassID(req.ClassID),
		Focus:   strings.TrimSpace(req.Focus),
		Subject: req.Subject,
		Content: req.Content,
		Status:  models.LessonStatusPlanned,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson", "create")
	}
	return lesson, nil
}

// Record stores a reviewed lesson. A non-nil entry is written in the same
// transaction and linked to the lesson.
func (s *LessonService) Record(ctx context.Context, lesson *models.Lesson, entry *models.HistoryEntry) error {
	if err := requireUser(lesson.UserID); err != nil {
		return err
	}
	if entry == nil {
		return storeError(s.repo.Create(ctx, lesson), "lesson", "create")
	}
	entry.UserID = lesson.UserID
	if err := s.repo.CreateWithHistory(ctx, lesson, entry); err != nil {
		return storeError(err, "lesson", "create")
	}
	s.notifier.RecordsChanged(ctx, lesson.UserID)
	return nil
}

// Update merges fields into a stored lesson.
func (s *LessonService) Update(ctx context.Context, userID, id string, req models.LessonUpdate) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "lesson")
	}
	lesson, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Focus != nil {
		lesson.Focus = strings.TrimSpace(*req.Focus)
	}
	if req.Subject != nil {
		lesson.Subject = *req.Subject
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Status != nil {
		lesson.Status = *req.Status
	}
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson", "update")
	}
	return lesson, nil
}

// Revise replaces the lesson body with a refined plan.
func (s *LessonService) Revise(ctx context.Context, userID, id, content string) (*models.Lesson, error) {
	status := models.LessonStatusRevised
	return s.Update(ctx, userID, id, models.LessonUpdate{Content: &content, Status: &status})
}

// MarkDelivered flags a lesson as taught.
func (s *LessonService) MarkDelivered(ctx context.Context, userID, id string) (*models.Lesson, error) {
	status := models.LessonStatusDelivered
	return s.Update(ctx, userID, id, models.LessonUpdate{Status: &status})
}

// Delete removes a lesson. Deleting a missing lesson succeeds.
func (s *LessonService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return storeError(s.repo.Delete(ctx, userID, id), "lesson", "delete")
}
