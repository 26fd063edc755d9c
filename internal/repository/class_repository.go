package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

const classColumns = `id, user_id, name, subject, roster, created_at, updated_at`

// ClassRepository manages class periods.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns the user's classes ordered by name.
func (r *ClassRepository) List(ctx context.Context, userID string) ([]models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE user_id = $1 ORDER BY name ASC`
	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query, userID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class owned by the user.
func (r *ClassRepository) FindByID(ctx context.Context, userID, id string) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1 AND user_id = $2`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// Create persists a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	return r.insert(ctx, r.db, class)
}

// Update replaces a class owned by the user.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	return r.update(ctx, r.db, class)
}

// SaveAll creates or replaces every class in one transaction. Entries
// without an ID are inserted; the rest must already belong to the user.
func (r *ClassRepository) SaveAll(ctx context.Context, classes []*models.Class) error {
	if len(classes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save classes tx: %w", err)
	}
	for _, class := range classes {
		if class.ID == "" {
			err = r.insert(ctx, tx, class)
		} else {
			err = r.update(ctx, tx, class)
		}
		if err != nil {
			rollback(tx)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save classes: %w", err)
	}
	return nil
}

// Delete removes a class. Records scoped to it are left in place.
func (r *ClassRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.db, "classes", userID, id)
}

func (r *ClassRepository) insert(ctx context.Context, exec sqlx.ExecerContext, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	if class.Roster == nil {
		class.Roster = models.StringList{}
	}
	query := `INSERT INTO classes (` + classColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := exec.ExecContext(ctx, query, class.ID, class.UserID, class.Name, class.Subject, class.Roster, class.CreatedAt, class.UpdatedAt); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

func (r *ClassRepository) update(ctx context.Context, exec sqlx.ExecerContext, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	if class.Roster == nil {
		class.Roster = models.StringList{}
	}
	const query = `UPDATE classes SET name = $3, subject = $4, roster = $5, updated_at = $6 WHERE id = $1 AND user_id = $2`
	res, err := exec.ExecContext(ctx, query, class.ID, class.UserID, class.Name, class.Subject, class.Roster, class.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return expectAffected(res)
}
