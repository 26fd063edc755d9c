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

const interventionColumns = `id, user_id, class_id, skill, tier, students, lesson_plan, status, scheduled_date, delivered_date, created_at, updated_at`

// InterventionRepository manages tiered intervention groups.
type InterventionRepository struct {
	db *sqlx.DB
}

// NewInterventionRepository constructs the repository.
func NewInterventionRepository(db *sqlx.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// List returns the user's groups newest first.
func (r *InterventionRepository) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.InterventionGroup, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + interventionColumns + ` FROM interventions WHERE user_id = $1`)
	args := appendScope(&query, []interface{}{userID}, filter)
	query.WriteString(" ORDER BY created_at DESC, id DESC")

	groups := []models.InterventionGroup{}
	if err := r.db.SelectContext(ctx, &groups, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}
	return groups, nil
}

// FindByID returns a group owned by the user.
func (r *InterventionRepository) FindByID(ctx context.Context, userID, id string) (*models.InterventionGroup, error) {
	query := `SELECT ` + interventionColumns + ` FROM interventions WHERE id = $1 AND user_id = $2`
	var group models.InterventionGroup
	if err := r.db.GetContext(ctx, &group, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find intervention: %w", err)
	}
	return &group, nil
}

// CreateMany stores groups in one transaction.
func (r *InterventionRepository) CreateMany(ctx context.Context, groups []*models.InterventionGroup) error {
	if len(groups) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin interventions tx: %w", err)
	}
	for _, group := range groups {
		if err := r.insert(ctx, tx, group); err != nil {
			rollback(tx)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit interventions tx: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a group.
func (r *InterventionRepository) Update(ctx context.Context, group *models.InterventionGroup) error {
	return r.update(ctx, r.db, group)
}

// UpdateWithHistory updates the group and appends an entry atomically.
func (r *InterventionRepository) UpdateWithHistory(ctx context.Context, group *models.InterventionGroup, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin intervention tx: %w", err)
	}
	if err := r.update(ctx, tx, group); err != nil {
		rollback(tx)
		return err
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		rollback(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit intervention tx: %w", err)
	}
	return nil
}

// Delete removes a group.
func (r *InterventionRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.db, "interventions", userID, id)
}

func (r *InterventionRepository) insert(ctx context.Context, exec sqlx.ExecerContext, group *models.InterventionGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now
	if group.Status == "" {
		group.Status = models.InterventionSuggested
	}
	if group.Students == nil {
		group.Students = models.StringList{}
	}
	query := `INSERT INTO interventions (` + interventionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := exec.ExecContext(ctx, query,
		group.ID, group.UserID, group.ClassID, group.Skill, group.Tier, group.Students,
		group.LessonPlan, group.Status, group.ScheduledDate, group.DeliveredDate,
		group.CreatedAt, group.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create intervention: %w", err)
	}
	return nil
}

func (r *InterventionRepository) update(ctx context.Context, exec sqlx.ExecerContext, group *models.InterventionGroup) error {
	group.UpdatedAt = time.Now().UTC()
	if group.Students == nil {
		group.Students = models.StringList{}
	}
	const query = `UPDATE interventions SET skill = $3, students = $4, lesson_plan = $5, status = $6, scheduled_date = $7, delivered_date = $8, updated_at = $9 WHERE id = $1 AND user_id = $2`
	res, err := exec.ExecContext(ctx, query,
		group.ID, group.UserID, group.Skill, group.Students, group.LessonPlan,
		group.Status, group.ScheduledDate, group.DeliveredDate, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update intervention: %w", err)
	}
	return expectAffected(res)
}
