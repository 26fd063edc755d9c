package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

// changeNotifier is told whenever records feeding derived views change.
type changeNotifier interface {
	RecordsChanged(ctx context.Context, userID string)
}

type noopNotifier struct{}

func (noopNotifier) RecordsChanged(context.Context, string) {}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	return nil
}

// storeError maps repository failures onto the service taxonomy.
func storeError(err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action+" "+resource)
}

func validationError(err error, payload string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+payload+" payload")
}

func optionalClassID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func scope(classID string) models.ScopeFilter {
	return models.ScopeFilter{ClassID: strings.TrimSpace(classID)}
}
