package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type accommodationRepository interface {
	List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Accommodation, error)
	Create(ctx context.Context, item *models.Accommodation) error
	Delete(ctx context.Context, userID, id string) error
}

// AccommodationService keeps SPED/504 supports per student.
type AccommodationService struct {
	repo      accommodationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccommodationService constructs an AccommodationService.
func NewAccommodationService(repo accommodationRepository, validate *validator.Validate, logger *zap.Logger) *AccommodationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccommodationService{repo: repo, validator: validate, logger: logger}
}

// List returns accommodations newest first.
func (s *AccommodationService) List(ctx context.Context, userID, classID string) ([]models.Accommodation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, userID, scope(classID))
	if err != nil {
		return nil, storeError(err, "accommodations", "list")
	}
	return items, nil
}

// Create saves an accommodation.
func (s *AccommodationService) Create(ctx context.Context, userID string, req models.AccommodationInput) (*models.Accommodation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "accommodation")
	}
	item := &models.Accommodation{
		UserID:        userID,
		ClassID:       optionalClassID(req.ClassID),
		StudentName:   strings.TrimSpace(req.StudentName),
		Needs:         req.Needs,
		Accommodation: req.Accommodation,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, storeError(err, "accommodation", "create")
	}
	return item, nil
}

// Delete removes an accommodation. Deleting a missing record succeeds.
func (s *AccommodationService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return storeError(s.repo.Delete(ctx, userID, id), "accommodation", "delete")
}

// Context renders the accommodations as prompt text, one student per line.
func (s *AccommodationService) Context(ctx context.Context, userID, classID string) string {
	items, err := s.List(ctx, userID, classID)
	if err != nil {
		s.logger.Warn("failed to load accommodations for prompt", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return accommodationContext(items)
}

func accommodationContext(items []models.Accommodation) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.StudentName)
		if item.Needs != "" {
			b.WriteString(" (")
			b.WriteString(item.Needs)
			b.WriteString(")")
		}
		b.WriteString(": ")
		b.WriteString(item.Accommodation)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
