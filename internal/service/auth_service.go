package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userClassLister interface {
	List(ctx context.Context, userID string) ([]models.Class, error)
}

type sessionStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	SessionTTL        time.Duration
}

// AuthService signs educators in and validates their tokens.
type AuthService struct {
	repo      authUserRepository
	classes   userClassLister
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, classes userClassLister, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = config.AccessTokenExpiry
	}
	return &AuthService{repo: repo, classes: classes, sessions: sessions, validator: validate, logger: logger, config: config}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// SignIn verifies the access code of an existing educator or registers a new
// one, then issues an access token and caches the restored profile.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sign-in payload")
	}

	created := false
	user, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user, err = s.register(ctx, req)
		if err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(user.AccessCodeHash), []byte(req.AccessCode)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or access code")
		}
	}

	classes, err := s.classes.List(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to load classes for session", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.Classes = classes

	issuedAt := time.Now().UTC()
	accessToken, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	if s.sessions != nil {
		if err := s.sessions.Set(ctx, sessionKey(user.ID), user, s.config.SessionTTL); err != nil {
			s.logger.Warn("failed to cache session", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return &models.SignInResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        *user,
		Created:     created,
		IssuedAt:    issuedAt,
	}, nil
}

func (s *AuthService) register(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.AccessCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash access code")
	}

	role := req.Role
	if role == "" {
		role = models.RoleTeacher
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}

	user := &models.User{
		Email:          req.Email,
		AccessCodeHash: string(hash),
		Name:           name,
		Role:           role,
		Grade:          req.Grade,
		Subjects:       models.StringList(req.Subjects),
		CampusName:     req.CampusName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("educator registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// SignOut clears the cached session. Issued tokens stay valid until expiry.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionKey(userID)); err != nil {
		s.logger.Warn("failed to clear session", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotAuthenticated.Code, appErrors.ErrNotAuthenticated.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
