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

const assessmentColumns = `id, user_id, class_id, title, type, subject, scores, average, reflection, behavior_notes, created_at`

// AssessmentRepository manages assessments.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// List returns the user's assessments newest first.
func (r *AssessmentRepository) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Assessment, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + assessmentColumns + ` FROM assessments WHERE user_id = $1`)
	args := appendScope(&query, []interface{}{userID}, filter)
	query.WriteString(" ORDER BY created_at DESC, id DESC")

	assessments := []models.Assessment{}
	if err := r.db.SelectContext(ctx, &assessments, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// FindByID returns an assessment owned by the user.
func (r *AssessmentRepository) FindByID(ctx context.Context, userID, id string) (*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1 AND user_id = $2`
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// CreateWithHistory stores the assessment and its history entry in one
// transaction. Neither row is visible unless both are written.
func (r *AssessmentRepository) CreateWithHistory(ctx context.Context, assessment *models.Assessment, entry *models.HistoryEntry) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	if assessment.Scores == nil {
		assessment.Scores = models.StudentScores{}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assessment tx: %w", err)
	}

	query := `INSERT INTO assessments (` + assessmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(ctx, query,
		assessment.ID, assessment.UserID, assessment.ClassID, assessment.Title, assessment.Type,
		assessment.Subject, assessment.Scores, assessment.Average, assessment.Reflection,
		assessment.BehaviorNotes, assessment.CreatedAt,
	); err != nil {
		rollback(tx)
		return fmt.Errorf("create assessment: %w", err)
	}

	entry.AssessmentID = &assessment.ID
	entry.CreatedAt = assessment.CreatedAt
	if err := insertHistory(ctx, tx, entry); err != nil {
		rollback(tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assessment tx: %w", err)
	}
	return nil
}

// Delete removes an assessment. History entries created from it remain.
func (r *AssessmentRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.db, "assessments", userID, id)
}
