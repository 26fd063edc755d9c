package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/dto"
	"github.com/noah-isme/edupro-navigator/internal/middleware"
	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asTeacher(c *gin.Context, userID string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.RoleTeacher})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type fakeAuth struct {
	resp    *models.SignInResponse
	err     error
	signOut string
}

func (f *fakeAuth) SignIn(context.Context, models.SignInRequest) (*models.SignInResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuth) SignOut(_ context.Context, userID string) error {
	f.signOut = userID
	return nil
}

type fakeProfile struct{ user *models.User }

func (f *fakeProfile) Me(context.Context, string) (*models.User, error) { return f.user, nil }

func (f *fakeProfile) UpdateProfile(_ context.Context, _ string, req models.ProfileUpdate) (*models.User, error) {
	if req.Name != nil {
		f.user.Name = *req.Name
	}
	return f.user, nil
}

func TestAuthHandlerSignInCreatesAccount(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{resp: &models.SignInResponse{AccessToken: "tok", Created: true}}, nil)
	body, _ := json.Marshal(models.SignInRequest{Email: "a@b.c", AccessCode: "1234"})
	c, w := newGinContext(http.MethodPost, "/auth/sign-in", body)

	h.SignIn(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthHandlerSignInRejectsBadJSON(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, nil)
	c, w := newGinContext(http.MethodPost, "/auth/sign-in", []byte("{"))

	h.SignIn(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestAuthHandlerSignOutRequiresUser(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthHandler(auth, nil)
	c, w := newGinContext(http.MethodPost, "/auth/sign-out", nil)

	h.SignOut(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/auth/sign-out", nil)
	asTeacher(c, "teacher-1")
	h.SignOut(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "teacher-1", auth.signOut)
}

func TestAuthHandlerUpdateProfile(t *testing.T) {
	profile := &fakeProfile{user: &models.User{ID: "teacher-1", Name: "Old"}}
	h := NewAuthHandler(&fakeAuth{}, profile)
	c, w := newGinContext(http.MethodPut, "/me", []byte(`{"name":"New"}`))
	asTeacher(c, "teacher-1")

	h.UpdateProfile(c)

	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &user))
	assert.Equal(t, "New", user.Name)
}

type fakeAssessments struct {
	created *models.Assessment
	userID  string
	deleted []string
}

func (f *fakeAssessments) List(_ context.Context, userID, _ string) ([]models.Assessment, error) {
	f.userID = userID
	return []models.Assessment{}, nil
}

func (f *fakeAssessments) Get(context.Context, string, string) (*models.Assessment, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
}

func (f *fakeAssessments) Create(_ context.Context, userID string, req models.AssessmentInput) (*models.Assessment, error) {
	f.created = &models.Assessment{ID: "a-1", UserID: userID, Title: req.Title, Type: req.Type, Average: 60}
	return f.created, nil
}

func (f *fakeAssessments) Delete(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestAssessmentHandlerCreate(t *testing.T) {
	svc := &fakeAssessments{}
	h := NewAssessmentHandler(svc)
	body, _ := json.Marshal(models.AssessmentInput{
		Title:  "Fractions",
		Type:   models.AssessmentBOY,
		Scores: []models.StudentScore{{Name: "A", Score: 50}, {Name: "B", Score: 70}},
	})
	c, w := newGinContext(http.MethodPost, "/assessments", body)
	asTeacher(c, "teacher-1")

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var saved models.Assessment
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &saved))
	assert.Equal(t, 60.0, saved.Average)
	assert.Equal(t, "teacher-1", svc.created.UserID)
}

func TestAssessmentHandlerDeleteIsIdempotent(t *testing.T) {
	svc := &fakeAssessments{}
	h := NewAssessmentHandler(svc)
	for i := 0; i < 2; i++ {
		c, w := newGinContext(http.MethodDelete, "/assessments/a-1", nil)
		c.Params = gin.Params{{Key: "id", Value: "a-1"}}
		asTeacher(c, "teacher-1")
		h.Delete(c)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, []string{"a-1", "a-1"}, svc.deleted)
}

func TestAssessmentHandlerGetNotFound(t *testing.T) {
	h := NewAssessmentHandler(&fakeAssessments{})
	c, w := newGinContext(http.MethodGet, "/assessments/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	asTeacher(c, "teacher-1")

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssessmentHandlerListRequiresUser(t *testing.T) {
	svc := &fakeAssessments{}
	h := NewAssessmentHandler(svc)
	c, w := newGinContext(http.MethodGet, "/assessments", nil)

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.userID)
}

type fakeHistory struct{ types []models.HistoryType }

func (f *fakeHistory) List(_ context.Context, _ string, types ...models.HistoryType) ([]models.HistoryEntry, error) {
	f.types = types
	return []models.HistoryEntry{}, nil
}

func (f *fakeHistory) Clear(context.Context, string) (int64, error) { return 3, nil }

func TestHistoryHandlerFiltersTypes(t *testing.T) {
	svc := &fakeHistory{}
	h := NewHistoryHandler(svc)
	c, w := newGinContext(http.MethodGet, "/history?type=coaching,%20pacing,", nil)
	asTeacher(c, "teacher-1")

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.HistoryType{models.HistoryCoaching, models.HistoryPacing}, svc.types)
}

func TestHistoryHandlerClear(t *testing.T) {
	h := NewHistoryHandler(&fakeHistory{})
	c, w := newGinContext(http.MethodDelete, "/history", nil)
	asTeacher(c, "teacher-1")

	h.Clear(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":3}`, string(decode(t, w).Data))
}

type fakeWorkflows struct {
	err  error
	scan *models.StrategicScan
	req  dto.StrategicScanRequest
}

func (f *fakeWorkflows) ReviewPlan(context.Context, string, dto.PlannerReviewRequest) (*models.PlanningReview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PlanningReview{Unscored: true, LessonID: "l-1"}, nil
}

func (f *fakeWorkflows) ReviewExecution(context.Context, string, dto.AnalyzerReviewRequest) (*models.ExecutionReview, error) {
	return &models.ExecutionReview{}, f.err
}

func (f *fakeWorkflows) Coach(context.Context, string, dto.CoachingRequest) (*models.CoachingAdvice, error) {
	return &models.CoachingAdvice{}, f.err
}

func (f *fakeWorkflows) Refine(context.Context, string, string, dto.RefineRequest) (*models.RefinedPlan, error) {
	return &models.RefinedPlan{}, f.err
}

func (f *fakeWorkflows) SuggestInterventions(context.Context, string, dto.SuggestInterventionsRequest) ([]models.InterventionGroup, error) {
	return []models.InterventionGroup{}, f.err
}

func (f *fakeWorkflows) PredictGrowth(context.Context, string, dto.PredictGrowthRequest) (*models.GrowthPrediction, error) {
	return &models.GrowthPrediction{}, f.err
}

func (f *fakeWorkflows) StrategicScan(_ context.Context, _ string, req dto.StrategicScanRequest) (*models.StrategicScan, error) {
	f.req = req
	return f.scan, f.err
}

func TestWorkflowHandlerReviewPlanUnscored(t *testing.T) {
	h := NewWorkflowHandler(&fakeWorkflows{})
	c, w := newGinContext(http.MethodPost, "/planner/review", []byte(`{"focus":"Fractions","planText":"Plan"}`))
	asTeacher(c, "teacher-1")

	h.ReviewPlan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w).Meta["unscored"])
}

func TestWorkflowHandlerBusyController(t *testing.T) {
	h := NewWorkflowHandler(&fakeWorkflows{err: appErrors.Clone(appErrors.ErrControllerBusy, "")})
	c, w := newGinContext(http.MethodPost, "/coaching", []byte(`{"scores":[{"name":"A","score":50}]}`))
	asTeacher(c, "teacher-1")

	h.Coach(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONTROLLER_BUSY", decode(t, w).Error.Code)
}

func TestWorkflowHandlerMalformedResponseIsRetryable(t *testing.T) {
	h := NewWorkflowHandler(&fakeWorkflows{err: appErrors.Clone(appErrors.ErrMalformedAIResponse, "")})
	c, w := newGinContext(http.MethodPost, "/insights/predict", nil)
	asTeacher(c, "teacher-1")

	h.PredictGrowth(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	env := decode(t, w)
	assert.Equal(t, "AI_MALFORMED_RESPONSE", env.Error.Code)
	assert.Equal(t, true, env.Meta["retryable"])
}

func TestWorkflowHandlerConfigurationErrorNotRetryable(t *testing.T) {
	h := NewWorkflowHandler(&fakeWorkflows{err: appErrors.Clone(appErrors.ErrConfiguration, "")})
	c, w := newGinContext(http.MethodPost, "/analyzer/review", []byte(`{"transcript":"hello"}`))
	asTeacher(c, "teacher-1")

	h.ReviewExecution(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, decode(t, w).Meta["retryable"])
}

func TestWorkflowHandlerStrategicScanEmptyBody(t *testing.T) {
	svc := &fakeWorkflows{scan: &models.StrategicScan{Campus: "All Campuses", Unavailable: []string{"pd_scan"}}}
	h := NewWorkflowHandler(svc)
	c, w := newGinContext(http.MethodPost, "/admin/scan", nil)
	asTeacher(c, "admin-1")

	h.StrategicScan(c)

	require.Equal(t, http.StatusOK, w.Code)
	var scan models.StrategicScan
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &scan))
	assert.Nil(t, scan.PD)
	assert.Equal(t, []string{"pd_scan"}, scan.Unavailable)
	assert.Empty(t, svc.req.Campus)
}

type fakeViews struct{ busy bool }

func (f *fakeViews) State(_ string, page models.ViewPage) models.ViewState {
	return models.ViewState{Page: page, Status: models.ViewLoading}
}

func (f *fakeViews) Reset(_ string, page models.ViewPage) (models.ViewState, error) {
	if f.busy {
		return models.ViewState{Page: page, Status: models.ViewLoading}, appErrors.Clone(appErrors.ErrControllerBusy, "")
	}
	return models.ViewState{Page: page, Status: models.ViewIdle}, nil
}

func TestViewHandlerUnknownPage(t *testing.T) {
	h := NewViewHandler(&fakeViews{})
	c, w := newGinContext(http.MethodGet, "/views/settings", nil)
	c.Params = gin.Params{{Key: "page", Value: "settings"}}
	asTeacher(c, "teacher-1")

	h.State(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewHandlerResetWhileLoading(t *testing.T) {
	h := NewViewHandler(&fakeViews{busy: true})
	c, w := newGinContext(http.MethodPost, "/views/planner/reset", nil)
	c.Params = gin.Params{{Key: "page", Value: "planner"}}
	asTeacher(c, "teacher-1")

	h.Reset(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

type fakeExports struct {
	file *os.File
	name string
	err  error
}

func (f *fakeExports) Generate(context.Context, string, models.ExportRequest) (*models.ExportResult, error) {
	return &models.ExportResult{Token: "tok"}, nil
}

func (f *fakeExports) Open(string, string) (*os.File, string, error) {
	return f.file, f.name, f.err
}

func TestExportHandlerDownload(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "export*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Title,Average\n")
	_, _ = file.Seek(0, 0)

	h := NewExportHandler(&fakeExports{file: file, name: "assessments.csv"})
	c, w := newGinContext(http.MethodGet, "/exports/download?token=tok", nil)
	asTeacher(c, "teacher-1")

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "assessments.csv")
	assert.Equal(t, "Title,Average\n", w.Body.String())
}

func TestExportHandlerDownloadRequiresToken(t *testing.T) {
	h := NewExportHandler(&fakeExports{})
	c, w := newGinContext(http.MethodGet, "/exports/download", nil)
	asTeacher(c, "teacher-1")

	h.Download(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
