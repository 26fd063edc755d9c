package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// UserService restores and edits the signed-in educator's profile.
type UserService struct {
	repo       profileRepository
	classes    userClassLister
	sessions   sessionStore
	validator  *validator.Validate
	logger     *zap.Logger
	sessionTTL time.Duration
}

// NewUserService constructs a UserService.
func NewUserService(repo profileRepository, classes userClassLister, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, sessionTTL time.Duration) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, classes: classes, sessions: sessions, validator: validate, logger: logger, sessionTTL: sessionTTL}
}

// Me returns the cached session profile, reloading it from the store on a miss.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	if s.sessions != nil {
		var cached models.User
		if hit, _ := s.sessions.Get(ctx, sessionKey(userID), &cached); hit {
			return &cached, nil
		}
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, user)
	return user, nil
}

// UpdateProfile merges the provided fields into the profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdate) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Grade != nil {
		user.Grade = *req.Grade
	}
	if req.Subjects != nil {
		user.Subjects = models.StringList(req.Subjects)
	}
	if req.CampusName != nil {
		user.CampusName = strings.TrimSpace(*req.CampusName)
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	s.remember(ctx, user)
	return user, nil
}

// Refresh reloads the cached session after class changes.
func (s *UserService) Refresh(ctx context.Context, userID string) {
	user, err := s.load(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to refresh session", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.remember(ctx, user)
}

func (s *UserService) load(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	classes, err := s.classes.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	user.Classes = classes
	return user, nil
}

func (s *UserService) remember(ctx context.Context, user *models.User) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Set(ctx, sessionKey(user.ID), user, s.sessionTTL); err != nil {
		s.logger.Warn("failed to cache session", zap.String("user_id", user.ID), zap.Error(err))
	}
}
