package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type classRepository interface {
	List(ctx context.Context, userID string) ([]models.Class, error)
	FindByID(ctx context.Context, userID, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	SaveAll(ctx context.Context, classes []*models.Class) error
	Delete(ctx context.Context, userID, id string) error
}

type sessionRefresher interface {
	Refresh(ctx context.Context, userID string)
}

const tempClassPrefix = "temp_"

// ClassService manages the caller's class periods.
type ClassService struct {
	repo      classRepository
	sessions  sessionRefresher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService. sessions may be nil.
func NewClassService(repo classRepository, sessions sessionRefresher, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// List returns the caller's classes ordered by name.
func (s *ClassService) List(ctx context.Context, userID string) ([]models.Class, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	classes, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, storeError(err, "classes", "list")
	}
	return classes, nil
}

// Create adds a class.
func (s *ClassService) Create(ctx context.Context, userID string, req models.ClassInput) (*models.Class, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "class")
	}
	class := &models.Class{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Subject: req.Subject,
		Roster:  models.StringList(req.Roster),
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, storeError(err, "class", "create")
	}
	s.refresh(ctx, userID)
	return class, nil
}

// Update merges fields into a class.
func (s *ClassService) Update(ctx context.Context, userID, id string, req models.ClassUpdate) (*models.Class, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "class")
	}
	class, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "class", "load")
	}
	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Subject != nil {
		class.Subject = *req.Subject
	}
	if req.Roster != nil {
		class.Roster = models.StringList(req.Roster)
	}
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, storeError(err, "class", "update")
	}
	s.refresh(ctx, userID)
	return class, nil
}

// SaveAll creates or replaces the submitted classes in one transaction.
// Entries with an empty or temporary id are created.
func (s *ClassService) SaveAll(ctx context.Context, userID string, inputs []models.ClassInput) ([]models.Class, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	classes := make([]*models.Class, 0, len(inputs))
	for _, input := range inputs {
		if err := s.validator.Struct(input); err != nil {
			return nil, validationError(err, "class")
		}
		id := strings.TrimSpace(input.ID)
		if strings.HasPrefix(id, tempClassPrefix) {
			id = ""
		}
		classes = append(classes, &models.Class{
			ID:      id,
			UserID:  userID,
			Name:    strings.TrimSpace(input.Name),
			Subject: input.Subject,
			Roster:  models.StringList(input.Roster),
		})
	}
	if err := s.repo.SaveAll(ctx, classes); err != nil {
		return nil, storeError(err, "class", "save")
	}
	s.refresh(ctx, userID)

	saved := make([]models.Class, 0, len(classes))
	for _, class := range classes {
		saved = append(saved, *class)
	}
	return saved, nil
}

// Delete removes a class. Deleting a missing class succeeds.
func (s *ClassService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return storeError(err, "class", "delete")
	}
	s.refresh(ctx, userID)
	return nil
}

func (s *ClassService) refresh(ctx context.Context, userID string) {
	if s.sessions != nil {
		s.sessions.Refresh(ctx, userID)
	}
}
