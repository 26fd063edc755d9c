package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/config"
	"github.com/noah-isme/edupro-navigator/pkg/database"
)

func newSQLiteStore(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "edupro.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTeacher(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, AccessCodeHash: "hash", Name: email, Role: models.RoleTeacher}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestSQLiteAssessmentsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteStore(t)
	users := NewUserRepository(db)
	assessments := NewAssessmentRepository(db)
	history := NewHistoryRepository(db)

	alice := seedTeacher(t, users, "alice@example.com")
	bob := seedTeacher(t, users, "bob@example.com")

	aliceRow := &models.Assessment{
		UserID:  alice.ID,
		ClassID: strPtr("c1"),
		Title:   "Fractions",
		Type:    models.AssessmentUnit,
		Scores:  models.StudentScores{{Name: "Ana", Score: 50}, {Name: "Ben", Score: 70}},
		Average: 60,
	}
	require.NoError(t, assessments.CreateWithHistory(ctx, aliceRow,
		&models.HistoryEntry{UserID: alice.ID, Type: models.HistoryAssessment, Metric: 60, Label: "Unit: Fractions"}))
	require.NoError(t, assessments.CreateWithHistory(ctx, &models.Assessment{
		UserID:  bob.ID,
		ClassID: strPtr("c1"),
		Title:   "Decimals",
		Type:    models.AssessmentUnit,
		Scores:  models.StudentScores{{Name: "Cy", Score: 90}},
		Average: 90,
	}, &models.HistoryEntry{UserID: bob.ID, Type: models.HistoryAssessment, Metric: 90, Label: "Unit: Decimals"}))

	listed, err := assessments.List(ctx, alice.ID, models.ScopeFilter{ClassID: "c1"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, aliceRow.ID, listed[0].ID)
	assert.Equal(t, 60.0, listed[0].Average)
	assert.Len(t, listed[0].Scores, 2)

	_, err = assessments.FindByID(ctx, bob.ID, aliceRow.ID)
	assert.Error(t, err)

	require.NoError(t, assessments.Delete(ctx, bob.ID, aliceRow.ID))
	_, err = assessments.FindByID(ctx, alice.ID, aliceRow.ID)
	require.NoError(t, err)

	require.NoError(t, assessments.Delete(ctx, alice.ID, aliceRow.ID))
	require.NoError(t, assessments.Delete(ctx, alice.ID, aliceRow.ID))
	listed, err = assessments.List(ctx, alice.ID, models.ScopeFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	entries, err := history.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryAssessment, entries[0].Type)
	require.NotNil(t, entries[0].AssessmentID)
	assert.Equal(t, aliceRow.ID, *entries[0].AssessmentID)
}
