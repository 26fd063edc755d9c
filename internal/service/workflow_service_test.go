package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/dto"
	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type stubCampusRepo struct {
	teachers []models.TeacherSummary
	lessons  []models.Lesson
	logs     []models.BehaviorLog
	err      error
}

func (s *stubCampusRepo) TeacherSummaries(ctx context.Context, campus string) ([]models.TeacherSummary, error) {
	return s.teachers, s.err
}

func (s *stubCampusRepo) RecentLessons(ctx context.Context, campus string, limit int) ([]models.Lesson, error) {
	return s.lessons, nil
}

func (s *stubCampusRepo) BehaviorLogs(ctx context.Context, campus string, limit int) ([]models.BehaviorLog, error) {
	return s.logs, nil
}

func newWorkflowServiceForTest(t *testing.T, gen *fakeGenerator, history *mockHistoryRepo, campus *stubCampusRepo) *WorkflowService {
	t.Helper()
	return NewWorkflowService(WorkflowDeps{
		Bridge:         NewAIBridge(gen, nil),
		Views:          NewViewRegistry(startQueue(t), nil),
		History:        NewHistoryService(history, &recordingNotifier{}, nil),
		Accommodations: NewAccommodationService(&mockAccommodationRepo{}, nil, nil),
		Campus:         NewCampusService(campus, nil, 0, nil),
	}, nil, nil)
}

func TestWorkflowCoachRecordsClassAverage(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpCoach] = "Small group re-teach"
	history := &mockHistoryRepo{}
	svc := newWorkflowServiceForTest(t, gen, history, &stubCampusRepo{})

	advice, err := svc.Coach(context.Background(), "u1", dto.CoachingRequest{
		Scores: []models.StudentScore{{Name: "Ana", Score: 40}, {Name: "Ben", Score: 140}},
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, advice.ClassAverage)

	require.Len(t, history.entries, 1)
	assert.Equal(t, models.HistoryCoaching, history.entries[0].Type)
	assert.Equal(t, 70.0, history.entries[0].Metric)
	assert.Equal(t, "Coaching Session: 2 students", history.entries[0].Label)

	state := svc.deps.Views.State("u1", models.PageCoaching)
	assert.Equal(t, models.ViewResult, state.Status)
}

func TestWorkflowCoachRejectsEmptyScores(t *testing.T) {
	svc := newWorkflowServiceForTest(t, newFakeGenerator(), &mockHistoryRepo{}, &stubCampusRepo{})

	_, err := svc.Coach(context.Background(), "u1", dto.CoachingRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestWorkflowStrategicScanKeepsPartialResults(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpPDScan] = `{"heatMap":[{"dimension":"Questioning","score":48,"status":"critical"}],"topPDNeed":{"area":"Questioning","rationale":"Low discourse"},"insight":"Focus on DOK"}`
	gen.responses[OpCurriculumAudit] = "not json"
	gen.responses[OpBehaviorCluster] = `{"clusters":[{"issue":"Transitions","timeBlock":"After lunch","grade":"5"}],"paxSolution":{"kernel":"Timers","implementation":"Visible countdowns"}}`
	campus := &stubCampusRepo{teachers: []models.TeacherSummary{{Name: "Ms. Rivera", AvgMastery: 72}}}
	svc := newWorkflowServiceForTest(t, gen, &mockHistoryRepo{}, campus)

	scan, err := svc.StrategicScan(context.Background(), "admin", dto.StrategicScanRequest{})
	require.NoError(t, err)
	assert.Equal(t, AllCampuses, scan.Campus)
	require.NotNil(t, scan.PD)
	assert.Equal(t, "Questioning", scan.PD.TopPDNeed.Area)
	assert.Nil(t, scan.Audit)
	require.NotNil(t, scan.Behavior)
	assert.Equal(t, "Timers", scan.Behavior.PAXSolution.Kernel)
	assert.Equal(t, []string{OpCurriculumAudit}, scan.Unavailable)
}

func TestWorkflowStrategicScanFailsOnUnavailableService(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpCurriculumAudit] = `{"fidelityScore":80,"auditFindings":[]}`
	gen.responses[OpBehaviorCluster] = `{"clusters":[]}`
	gen.errs[OpPDScan] = appErrors.Clone(appErrors.ErrServiceUnavailable, "upstream timeout")
	svc := newWorkflowServiceForTest(t, gen, &mockHistoryRepo{}, &stubCampusRepo{})

	_, err := svc.StrategicScan(context.Background(), "admin", dto.StrategicScanRequest{Campus: "North"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrServiceUnavailable))

	state := svc.deps.Views.State("admin", models.PageAdmin)
	assert.Equal(t, models.ViewError, state.Status)
}
