package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type assessmentRepository interface {
	List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Assessment, error)
	FindByID(ctx context.Context, userID, id string) (*models.Assessment, error)
	CreateWithHistory(ctx context.Context, assessment *models.Assessment, entry *models.HistoryEntry) error
	Delete(ctx context.Context, userID, id string) error
}

// AssessmentService saves scored assessments and their history rows.
type AssessmentService struct {
	repo      assessmentRepository
	notifier  changeNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(repo assessmentRepository, notifier changeNotifier, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AssessmentService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// List returns assessments newest first.
func (s *AssessmentService) List(ctx context.Context, userID, classID string) ([]models.Assessment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, userID, scope(classID))
	if err != nil {
		return nil, storeError(err, "assessments", "list")
	}
	return items, nil
}

// Get returns one assessment.
func (s *AssessmentService) Get(ctx context.Context, userID, id string) (*models.Assessment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "assessment", "load")
	}
	return item, nil
}

// Create clamps the scores, freezes their mean as the average and writes
// the assessment together with its history entry.
func (s *AssessmentService) Create(ctx context.Context, userID string, req models.AssessmentInput) (*models.Assessment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "assessment")
	}

	scores := make(models.StudentScores, 0, len(req.Scores))
	for _, score := range req.Scores {
		scores = append(scores, models.StudentScore{Name: strings.TrimSpace(score.Name), Score: ClampScore(score.Score)})
	}

	assessment := &models.Assessment{
		UserID:        userID,
		ClassID:       optionalClassID(req.ClassID),
		Title:         strings.TrimSpace(req.Title),
		Type:          req.Type,
		Subject:       req.Subject,
		Scores:        scores,
		Average:       ClassAverage(scores),
		Reflection:    req.Reflection,
		BehaviorNotes: req.BehaviorNotes,
	}
	entry := &models.HistoryEntry{
		UserID: userID,
		Type:   models.HistoryAssessment,
		Metric: assessment.Average,
		Label:  fmt.Sprintf("%s: %s", assessment.Type, assessment.Title),
	}

	if err := s.repo.CreateWithHistory(ctx, assessment, entry); err != nil {
		return nil, storeError(err, "assessment", "create")
	}
	s.notifier.RecordsChanged(ctx, userID)
	return assessment, nil
}

// Delete removes an assessment. History rows created from it remain.
func (s *AssessmentService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return storeError(err, "assessment", "delete")
	}
	s.notifier.RecordsChanged(ctx, userID)
	return nil
}
