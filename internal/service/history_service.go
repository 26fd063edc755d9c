package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type historyRepository interface {
	List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error)
	CreateMany(ctx context.Context, entries []*models.HistoryEntry) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// HistoryService reads and appends outcome history.
type HistoryService struct {
	repo     historyRepository
	notifier changeNotifier
	logger   *zap.Logger
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(repo historyRepository, notifier changeNotifier, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &HistoryService{repo: repo, notifier: notifier, logger: logger}
}

// List returns entries newest first, optionally restricted to types.
func (s *HistoryService) List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx, userID, types...)
	if err != nil {
		return nil, storeError(err, "history", "list")
	}
	return entries, nil
}

// Append writes entries for the user in one transaction.
func (s *HistoryService) Append(ctx context.Context, userID string, entries ...*models.HistoryEntry) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		entry.UserID = userID
	}
	if err := s.repo.CreateMany(ctx, entries); err != nil {
		return storeError(err, "history", "append")
	}
	s.notifier.RecordsChanged(ctx, userID)
	return nil
}

// Clear removes every entry the user owns.
func (s *HistoryService) Clear(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	removed, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, storeError(err, "history", "clear")
	}
	s.notifier.RecordsChanged(ctx, userID)
	s.logger.Info("history cleared", zap.String("user_id", userID), zap.Int64("removed", removed))
	return removed, nil
}
