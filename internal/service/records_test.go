package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type mockClassRepo struct {
	classes []models.Class
	saved   []*models.Class
	findErr error
	saveErr error
}

func (m *mockClassRepo) List(ctx context.Context, userID string) ([]models.Class, error) {
	return m.classes, nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, userID, id string) (*models.Class, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, c := range m.classes {
		if c.ID == id && c.UserID == userID {
			clone := c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-new"
	m.saved = append(m.saved, class)
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.saved = append(m.saved, class)
	return nil
}

func (m *mockClassRepo) SaveAll(ctx context.Context, classes []*models.Class) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for i, class := range classes {
		if class.ID == "" {
			class.ID = "class-" + string(rune('a'+i))
		}
	}
	m.saved = append(m.saved, classes...)
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, userID, id string) error {
	return nil
}

type countingRefresher struct {
	count int
}

func (c *countingRefresher) Refresh(ctx context.Context, userID string) {
	c.count++
}

func TestClassServiceSaveAllCreatesTemporaryIDs(t *testing.T) {
	repo := &mockClassRepo{}
	refresher := &countingRefresher{}
	svc := NewClassService(repo, refresher, nil, nil)

	saved, err := svc.SaveAll(context.Background(), "u1", []models.ClassInput{
		{ID: "temp_123", Name: " Period 1 "},
		{ID: "existing", Name: "Period 2"},
		{Name: "Period 3"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "class-a", saved[0].ID)
	assert.Equal(t, "Period 1", saved[0].Name)
	assert.Equal(t, "existing", saved[1].ID)
	assert.Equal(t, "class-c", saved[2].ID)
	assert.Equal(t, 1, refresher.count)
}

func TestClassServiceSaveAllValidatesEveryEntry(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil)

	_, err := svc.SaveAll(context.Background(), "u1", []models.ClassInput{{Name: "ok"}, {Name: ""}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.saved)
}

func TestClassServiceUpdateMissing(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, nil, nil, nil)
	name := "renamed"

	_, err := svc.Update(context.Background(), "u1", "nope", models.ClassUpdate{Name: &name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestClassServiceRequiresUser(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, nil, nil, nil)

	_, err := svc.List(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthenticated))
}

type mockLessonRepo struct {
	lessons     map[string]*models.Lesson
	withHistory []*models.HistoryEntry
	createErr   error
}

func newMockLessonRepo(lessons ...*models.Lesson) *mockLessonRepo {
	repo := &mockLessonRepo{lessons: make(map[string]*models.Lesson)}
	for _, l := range lessons {
		repo.lessons[l.ID] = l
	}
	return repo
}

func (m *mockLessonRepo) List(ctx context.Context, userID string, filter models.ScopeFilter, limit int) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range m.lessons {
		if filter.ClassID != "" && (l.ClassID == nil || *l.ClassID != filter.ClassID) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLessonRepo) FindByID(ctx context.Context, userID, id string) (*models.Lesson, error) {
	l, ok := m.lessons[id]
	if !ok || l.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *l
	return &clone, nil
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.createErr != nil {
		return m.createErr
	}
	lesson.ID = "lesson-new"
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *mockLessonRepo) CreateWithHistory(ctx context.Context, lesson *models.Lesson, entry *models.HistoryEntry) error {
	if err := m.Create(ctx, lesson); err != nil {
		return err
	}
	entry.LessonID = &lesson.ID
	m.withHistory = append(m.withHistory, entry)
	return nil
}

func (m *mockLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *mockLessonRepo) Delete(ctx context.Context, userID, id string) error {
	delete(m.lessons, id)
	return nil
}

func TestLessonServiceRecordWithHistoryNotifies(t *testing.T) {
	repo := newMockLessonRepo()
	notifier := &recordingNotifier{}
	svc := NewLessonService(repo, notifier, nil, nil)

	lesson := &models.Lesson{UserID: "u1", Focus: "Fractions", Status: models.LessonStatusPlanned}
	entry := &models.HistoryEntry{Type: models.HistoryPlanning, Metric: 72}
	require.NoError(t, svc.Record(context.Background(), lesson, entry))

	require.Len(t, repo.withHistory, 1)
	assert.Equal(t, "u1", repo.withHistory[0].UserID)
	assert.Equal(t, "lesson-new", *repo.withHistory[0].LessonID)
	assert.Equal(t, 1, notifier.calls())
}

func TestLessonServiceRecordWithoutScore(t *testing.T) {
	repo := newMockLessonRepo()
	notifier := &recordingNotifier{}
	svc := NewLessonService(repo, notifier, nil, nil)

	require.NoError(t, svc.Record(context.Background(), &models.Lesson{UserID: "u1", Focus: "Fractions"}, nil))
	assert.Empty(t, repo.withHistory)
	assert.Len(t, repo.lessons, 1)
	assert.Equal(t, 0, notifier.calls())
}

func TestLessonServiceReviseAndDeliver(t *testing.T) {
	repo := newMockLessonRepo(&models.Lesson{ID: "l1", UserID: "u1", Content: "old", Status: models.LessonStatusPlanned})
	svc := NewLessonService(repo, nil, nil, nil)

	revised, err := svc.Revise(context.Background(), "u1", "l1", "new plan")
	require.NoError(t, err)
	assert.Equal(t, "new plan", revised.Content)
	assert.Equal(t, models.LessonStatusRevised, revised.Status)

	delivered, err := svc.MarkDelivered(context.Background(), "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusDelivered, delivered.Status)
	assert.Equal(t, "new plan", delivered.Content)

	_, err = svc.Get(context.Background(), "someone-else", "l1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

type mockAssessmentRepo struct {
	items     []models.Assessment
	entries   []*models.HistoryEntry
	createErr error
}

func (m *mockAssessmentRepo) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Assessment, error) {
	return m.items, nil
}

func (m *mockAssessmentRepo) FindByID(ctx context.Context, userID, id string) (*models.Assessment, error) {
	for _, a := range m.items {
		if a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssessmentRepo) CreateWithHistory(ctx context.Context, assessment *models.Assessment, entry *models.HistoryEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	assessment.ID = "a-new"
	entry.AssessmentID = &assessment.ID
	m.items = append([]models.Assessment{*assessment}, m.items...)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAssessmentRepo) Delete(ctx context.Context, userID, id string) error {
	return nil
}

func TestAssessmentServiceCreateFreezesAverage(t *testing.T) {
	repo := &mockAssessmentRepo{}
	notifier := &recordingNotifier{}
	svc := NewAssessmentService(repo, notifier, nil, nil)

	assessment, err := svc.Create(context.Background(), "u1", models.AssessmentInput{
		Title:  "Reading Fluency",
		Type:   models.AssessmentBOY,
		Scores: []models.StudentScore{{Name: " Ana ", Score: 50}, {Name: "Ben", Score: 70}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 60, assessment.Average, 0.0001)
	assert.Equal(t, "Ana", assessment.Scores[0].Name)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, models.HistoryAssessment, entry.Type)
	assert.InDelta(t, 60, entry.Metric, 0.0001)
	assert.Equal(t, "BOY: Reading Fluency", entry.Label)
	assert.Equal(t, "a-new", *entry.AssessmentID)
	assert.Equal(t, 1, notifier.calls())
}

func TestAssessmentServiceCreateClampsScores(t *testing.T) {
	repo := &mockAssessmentRepo{}
	svc := NewAssessmentService(repo, nil, nil, nil)

	assessment, err := svc.Create(context.Background(), "u1", models.AssessmentInput{
		Title:  "Unit 1",
		Type:   models.AssessmentUnit,
		Scores: []models.StudentScore{{Name: "Ana", Score: 140}, {Name: "Ben", Score: -20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, assessment.Scores[0].Score)
	assert.Equal(t, 0.0, assessment.Scores[1].Score)
	assert.InDelta(t, 50, assessment.Average, 0.0001)
}

func TestAssessmentServiceCreateWithoutScores(t *testing.T) {
	repo := &mockAssessmentRepo{}
	svc := NewAssessmentService(repo, nil, nil, nil)

	assessment, err := svc.Create(context.Background(), "u1", models.AssessmentInput{Title: "Empty", Type: models.AssessmentMOY})
	require.NoError(t, err)
	assert.Equal(t, 0.0, assessment.Average)
}

func TestAssessmentServiceRejectsUnknownType(t *testing.T) {
	svc := NewAssessmentService(&mockAssessmentRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "u1", models.AssessmentInput{Title: "Quiz", Type: "Quiz"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssessmentServiceStoreFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewAssessmentService(&mockAssessmentRepo{createErr: errors.New("tx aborted")}, notifier, nil, nil)

	_, err := svc.Create(context.Background(), "u1", models.AssessmentInput{Title: "Unit", Type: models.AssessmentUnit})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, notifier.calls())
}

type mockHistoryRepo struct {
	entries []*models.HistoryEntry
	listErr error
}

func (m *mockHistoryRepo) List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.HistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if len(types) > 0 && !containsType(types, entry.Type) {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

func containsType(types []models.HistoryType, kind models.HistoryType) bool {
	for _, t := range types {
		if t == kind {
			return true
		}
	}
	return false
}

func (m *mockHistoryRepo) CreateMany(ctx context.Context, entries []*models.HistoryEntry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockHistoryRepo) Clear(ctx context.Context, userID string) (int64, error) {
	removed := int64(len(m.entries))
	m.entries = nil
	return removed, nil
}

func TestHistoryServiceAppendAndClear(t *testing.T) {
	repo := &mockHistoryRepo{}
	notifier := &recordingNotifier{}
	svc := NewHistoryService(repo, notifier, nil)

	require.NoError(t, svc.Append(context.Background(), "u1",
		&models.HistoryEntry{Type: models.HistoryCoaching, Metric: 70},
		&models.HistoryEntry{Type: models.HistoryPacing, Metric: 80},
	))
	assert.Equal(t, "u1", repo.entries[1].UserID)

	coaching, err := svc.List(context.Background(), "u1", models.HistoryCoaching)
	require.NoError(t, err)
	assert.Len(t, coaching, 1)

	require.NoError(t, svc.Append(context.Background(), "u1"))
	assert.Equal(t, 1, notifier.calls())

	removed, err := svc.Clear(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
	assert.Equal(t, 2, notifier.calls())
}

type mockInterventionRepo struct {
	groups    map[string]*models.InterventionGroup
	created   []*models.InterventionGroup
	delivered []*models.HistoryEntry
}

func newMockInterventionRepo(groups ...*models.InterventionGroup) *mockInterventionRepo {
	repo := &mockInterventionRepo{groups: make(map[string]*models.InterventionGroup)}
	for _, g := range groups {
		repo.groups[g.ID] = g
	}
	return repo
}

func (m *mockInterventionRepo) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.InterventionGroup, error) {
	var out []models.InterventionGroup
	for _, g := range m.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockInterventionRepo) FindByID(ctx context.Context, userID, id string) (*models.InterventionGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *g
	return &clone, nil
}

func (m *mockInterventionRepo) CreateMany(ctx context.Context, groups []*models.InterventionGroup) error {
	m.created = append(m.created, groups...)
	return nil
}

func (m *mockInterventionRepo) Update(ctx context.Context, group *models.InterventionGroup) error {
	m.groups[group.ID] = group
	return nil
}

func (m *mockInterventionRepo) UpdateWithHistory(ctx context.Context, group *models.InterventionGroup, entry *models.HistoryEntry) error {
	m.groups[group.ID] = group
	m.delivered = append(m.delivered, entry)
	return nil
}

func (m *mockInterventionRepo) Delete(ctx context.Context, userID, id string) error {
	return nil
}

func newInterventionServiceForTest(repo *mockInterventionRepo, notifier changeNotifier) *InterventionService {
	svc := NewInterventionService(repo, notifier, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestInterventionServiceDeliverWritesHistory(t *testing.T) {
	repo := newMockInterventionRepo(&models.InterventionGroup{ID: "g1", UserID: "u1", Skill: "Decoding", Status: models.InterventionScheduled})
	notifier := &recordingNotifier{}
	svc := newInterventionServiceForTest(repo, notifier)

	status := models.InterventionDelivered
	group, err := svc.Update(context.Background(), "u1", "g1", models.InterventionUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.InterventionDelivered, group.Status)
	require.NotNil(t, group.DeliveredDate)
	require.NotNil(t, group.ScheduledDate)
	assert.Equal(t, 2026, group.DeliveredDate.Year())

	require.Len(t, repo.delivered, 1)
	entry := repo.delivered[0]
	assert.Equal(t, models.HistoryIntervention, entry.Type)
	assert.Equal(t, 100.0, entry.Metric)
	assert.Equal(t, "Intervention Delivered: Decoding", entry.Label)
	assert.Equal(t, 1, notifier.calls())
}

func TestInterventionServiceRejectsBackwardTransition(t *testing.T) {
	repo := newMockInterventionRepo(&models.InterventionGroup{ID: "g1", UserID: "u1", Status: models.InterventionDelivered})
	svc := newInterventionServiceForTest(repo, nil)

	for _, next := range []models.InterventionStatus{models.InterventionScheduled, models.InterventionSuggested, models.InterventionDelivered} {
		status := next
		_, err := svc.Update(context.Background(), "u1", "g1", models.InterventionUpdate{Status: &status})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition), "transition to %s", next)
	}
	assert.Empty(t, repo.delivered)
}

func TestInterventionServiceScheduleStampsDate(t *testing.T) {
	repo := newMockInterventionRepo(&models.InterventionGroup{ID: "g1", UserID: "u1", Status: models.InterventionSuggested})
	svc := newInterventionServiceForTest(repo, nil)

	status := models.InterventionScheduled
	group, err := svc.Update(context.Background(), "u1", "g1", models.InterventionUpdate{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, group.ScheduledDate)
	assert.Nil(t, group.DeliveredDate)
	assert.Empty(t, repo.delivered)
}

func TestInterventionServiceEditWithoutStatus(t *testing.T) {
	repo := newMockInterventionRepo(&models.InterventionGroup{ID: "g1", UserID: "u1", Skill: "Old", Status: models.InterventionSuggested})
	svc := newInterventionServiceForTest(repo, nil)

	skill := " Fluency "
	group, err := svc.Update(context.Background(), "u1", "g1", models.InterventionUpdate{Skill: &skill, Students: []string{"Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "Fluency", group.Skill)
	assert.Equal(t, models.StringList{"Ana"}, group.Students)
	assert.Equal(t, models.InterventionSuggested, group.Status)
}

func TestInterventionServiceSaveSuggestionsNormalisesTiers(t *testing.T) {
	repo := newMockInterventionRepo()
	svc := newInterventionServiceForTest(repo, nil)

	saved, err := svc.SaveSuggestions(context.Background(), "u1", "c1", []models.InterventionSuggestion{
		{Skill: "Decoding", Tier: 1, StudentNames: []string{"Ana"}},
		{Skill: " ", Tier: 3},
		{Skill: "Inference", Tier: 5},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, 2, saved[0].Tier)
	assert.Equal(t, 3, saved[1].Tier)
	assert.Equal(t, models.InterventionSuggested, saved[1].Status)
	assert.Equal(t, "c1", *saved[0].ClassID)
}

type mockAccommodationRepo struct {
	items   []models.Accommodation
	listErr error
}

func (m *mockAccommodationRepo) List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Accommodation, error) {
	return m.items, m.listErr
}

func (m *mockAccommodationRepo) Create(ctx context.Context, item *models.Accommodation) error {
	item.ID = "acc-new"
	m.items = append(m.items, *item)
	return nil
}

func (m *mockAccommodationRepo) Delete(ctx context.Context, userID, id string) error {
	return nil
}

func TestAccommodationServiceContext(t *testing.T) {
	repo := &mockAccommodationRepo{}
	svc := NewAccommodationService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "u1", models.AccommodationInput{StudentName: " Ana ", Needs: "Dyslexia", Accommodation: "Audio texts"})
	require.NoError(t, err)

	text := svc.Context(context.Background(), "u1", "")
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "Audio texts")

	repo.listErr = errors.New("down")
	assert.Empty(t, svc.Context(context.Background(), "u1", ""))
}
