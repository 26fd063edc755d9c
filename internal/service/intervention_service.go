package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type interventionRepository interface {
	List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.InterventionGroup, error)
	FindByID(ctx context.Context, userID, id string) (*models.InterventionGroup, error)
	CreateMany(ctx context.Context, groups []*models.InterventionGroup) error
	Update(ctx context.Context, group *models.InterventionGroup) error
	UpdateWithHistory(ctx context.Context, group *models.InterventionGroup, entry *models.HistoryEntry) error
	Delete(ctx context.Context, userID, id string) error
}

const deliveredMetric = 100

// InterventionService manages tiered small groups and their forward-only
// status transitions.
type InterventionService struct {
	repo      interventionRepository
	notifier  changeNotifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInterventionService constructs an InterventionService.
func NewInterventionService(repo interventionRepository, notifier changeNotifier, validate *validator.Validate, logger *zap.Logger) *InterventionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &InterventionService{repo: repo, notifier: notifier, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns groups newest first.
func (s *InterventionService) List(ctx context.Context, userID, classID string) ([]models.InterventionGroup, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	groups, err := s.repo.List(ctx, userID, scope(classID))
	if err != nil {
		return nil, storeError(err, "interventions", "list")
	}
	return groups, nil
}

// Create saves a group by hand with status suggested.
func (s *InterventionService) Create(ctx context.Context, userID string, req models.InterventionInput) (*models.InterventionGroup, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "intervention")
	}
	group := &models.InterventionGroup{
		UserID:     userID,
		ClassID:    optionalClassID(req.ClassID),
		Skill:      strings.TrimSpace(req.Skill),
		Tier:       req.Tier,
		Students:   models.StringList(req.Students),
		LessonPlan: req.LessonPlan,
		Status:     models.InterventionSuggested,
	}
	if err := s.repo.CreateMany(ctx, []*models.InterventionGroup{group}); err != nil {
		return nil, storeError(err, "intervention", "create")
	}
	return group, nil
}

// SaveSuggestions stores AI proposed groups with status suggested. Tiers
// outside 2..3 are coerced to the nearest valid tier.
func (s *InterventionService) SaveSuggestions(ctx context.Context, userID, classID string, suggestions []models.InterventionSuggestion) ([]models.InterventionGroup, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	groups := make([]*models.InterventionGroup, 0, len(suggestions))
	for _, suggestion := range suggestions {
		skill := strings.TrimSpace(suggestion.Skill)
		if skill == "" {
			continue
		}
		tier := suggestion.Tier
		if tier < 2 {
			tier = 2
		}
		if tier > 3 {
			tier = 3
		}
		groups = append(groups, &models.InterventionGroup{
			UserID:     userID,
			ClassID:    optionalClassID(&classID),
			Skill:      skill,
			Tier:       tier,
			Students:   models.StringList(suggestion.StudentNames),
			LessonPlan: suggestion.LessonPlan,
			Status:     models.InterventionSuggested,
		})
	}
	if err := s.repo.CreateMany(ctx, groups); err != nil {
		return nil, storeError(err, "interventions", "save")
	}
	saved := make([]models.InterventionGroup, 0, len(groups))
	for _, group := range groups {
		saved = append(saved, *group)
	}
	return saved, nil
}

// Update merges edits and applies a status transition. Moving to delivered
// stamps the delivery date and writes the intervention history entry in the
// same transaction.
func (s *InterventionService) Update(ctx context.Context, userID, id string, req models.InterventionUpdate) (*models.InterventionGroup, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "intervention")
	}
	group, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "intervention", "load")
	}

	if req.Skill != nil {
		group.Skill = strings.TrimSpace(*req.Skill)
	}
	if req.Students != nil {
		group.Students = models.StringList(req.Students)
	}
	if req.LessonPlan != nil {
		group.LessonPlan = *req.LessonPlan
	}
	if req.ScheduledDate != nil && group.Status != models.InterventionDelivered {
		scheduled := req.ScheduledDate.UTC()
		group.ScheduledDate = &scheduled
	}

	if req.Status == nil {
		if err := s.repo.Update(ctx, group); err != nil {
			return nil, storeError(err, "intervention", "update")
		}
		return group, nil
	}

	next := *req.Status
	if !group.Status.CanTransition(next) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move intervention from "+string(group.Status)+" to "+string(next))
	}

	now := s.now()
	group.Status = next
	if group.ScheduledDate == nil {
		group.ScheduledDate = &now
	}
	if next != models.InterventionDelivered {
		if err := s.repo.Update(ctx, group); err != nil {
			return nil, storeError(err, "intervention", "update")
		}
		return group, nil
	}

	group.DeliveredDate = &now
	entry := &models.HistoryEntry{
		UserID:    userID,
		Type:      models.HistoryIntervention,
		Metric:    deliveredMetric,
		Label:     "Intervention Delivered: " + group.Skill,
		CreatedAt: now,
	}
	if err := s.repo.UpdateWithHistory(ctx, group, entry); err != nil {
		return nil, storeError(err, "intervention", "deliver")
	}
	s.notifier.RecordsChanged(ctx, userID)
	s.logger.Info("intervention delivered", zap.String("user_id", userID), zap.String("intervention_id", group.ID))
	return group, nil
}

// Delete removes a group. Deleting a missing group succeeds.
func (s *InterventionService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return storeError(s.repo.Delete(ctx, userID, id), "intervention", "delete")
}
