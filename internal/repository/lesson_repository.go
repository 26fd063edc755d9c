package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

const lessonColumns = `id, user_id, class_id, focus, subject, content, date_planned, status, updated_at`

// LessonRepository manages the lesson bank.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns the user's lessons, newest planned first. A positive limit
// caps the result.
func (r *LessonRepository) List(ctx context.Context, userID string, filter models.ScopeFilter, limit int) ([]models.Lesson, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + lessonColumns + ` FROM lessons WHERE user_id = $1`)
	args := appendScope(&query, []interface{}{userID}, filter)
	query.WriteString(" ORDER BY date_planned DESC")
	if limit > 0 {
		fmt.Fprintf(&query, " LIMIT %d", limit)
	}

	lessons := []models.Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// FindByID returns a lesson owned by the user.
func (r *LessonRepository) FindByID(ctx context.Context, userID, id string) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1 AND user_id = $2`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// Create stores a lesson, stamping its id and planned date.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.insert(ctx, r.db, lesson)
}

// CreateWithHistory stores a lesson and the history entry describing it in
// one transaction. The entry is linked to the new lesson id.
func (r *LessonRepository) CreateWithHistory(ctx context.Context, lesson *models.Lesson, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lesson tx: %w", err)
	}
	if err := r.insert(ctx, tx, lesson); err != nil {
		rollback(tx)
		return err
	}
	entry.LessonID = &lesson.ID
	if err := insertHistory(ctx, tx, entry); err != nil {
		rollback(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lesson tx: %w", err)
	}
	return nil
}

// Update replaces the mutable lesson fields.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET class_id = $3, focus = $4, subject = $5, content = $6, status = $7, updated_at = $8 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, lesson.ID, lesson.UserID, lesson.ClassID, lesson.Focus, lesson.Subject, lesson.Content, lesson.Status, lesson.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.db, "lessons", userID, id)
}

func (r *LessonRepository) insert(ctx context.Context, exec sqlx.ExecerContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.DatePlanned.IsZero() {
		lesson.DatePlanned = now
	}
	lesson.UpdatedAt = now
	if lesson.Status == "" {
		lesson.Status = models.LessonStatusPlanned
	}
	query := `INSERT INTO lessons (` + lessonColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := exec.ExecContext(ctx, query,
		lesson.ID, lesson.UserID, lesson.ClassID, lesson.Focus, lesson.Subject,
		lesson.Content, lesson.DatePlanned, lesson.Status, lesson.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}
