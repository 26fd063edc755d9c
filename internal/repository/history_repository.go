package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

const historyColumns = `id, user_id, type, metric, label, lesson_id, assessment_id, created_at`

// HistoryRepository stores the append-only outcome log.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns the user's entries newest first, optionally limited to types.
func (r *HistoryRepository) List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + historyColumns + ` FROM history WHERE user_id = $1`)
	args := []interface{}{userID}
	if len(types) > 0 {
		holders := make([]string, len(types))
		for i, t := range types {
			args = append(args, t)
			holders[i] = fmt.Sprintf("$%d", len(args))
		}
		fmt.Fprintf(&query, " AND type IN (%s)", strings.Join(holders, ", "))
	}
	query.WriteString(" ORDER BY created_at DESC, id DESC")

	entries := []models.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Create appends one entry.
func (r *HistoryRepository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	return insertHistory(ctx, r.db, entry)
}

// CreateMany appends several entries in one transaction.
func (r *HistoryRepository) CreateMany(ctx context.Context, entries []*models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	for _, entry := range entries {
		if err := insertHistory(ctx, tx, entry); err != nil {
			rollback(tx)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}
	return nil
}

// Clear removes every entry owned by the user.
func (r *HistoryRepository) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func insertHistory(ctx context.Context, exec sqlx.ExecerContext, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO history (` + historyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := exec.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Type, entry.Metric, entry.Label,
		entry.LessonID, entry.AssessmentID, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}
