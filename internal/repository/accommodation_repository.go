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

const accommodationColumns = `id, user_id, class_id, student_name, needs, accommodation, created_at`

// AccommodationRepository manages SPED/504 accommodations.
type AccommodationRepository struct {
	db *sqlx.DB
}

// NewAccommodationRepository constructs the repository.
func NewAccommodationRepository(db *sqlx.DB) *AccommodationRepository {
	return &AccommodationRepository{db: db}
}

// List returns the user's accommodations newest first.
func (r *AccommodationRepository) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Accommodation, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + accommodationColumns + ` FROM accommodations WHERE user_id = $1`)
	args := appendScope(&query, []interface{}{userID}, filter)
	query.WriteString(" ORDER BY created_at DESC")

	items := []models.Accommodation{}
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list accommodations: %w", err)
	}
	return items, nil
}

// Create stores an accommodation.
func (r *AccommodationRepository) Create(ctx context.Context, item *models.Accommodation) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	query := `INSERT INTO accommodations (` + accommodationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, item.ID, item.UserID, item.ClassID, item.StudentName, item.Needs, item.Accommodation, item.CreatedAt); err != nil {
		return fmt.Errorf("create accommodation: %w", err)
	}
	return nil
}

// Delete removes an accommodation.
func (r *AccommodationRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.db, "accommodations", userID, id)
}
