package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/middleware"
	"github.com/noah-isme/edupro-navigator/internal/models"
)

func fakeAuthMiddleware(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role})
		c.Next()
	}
}

func newTestRouter(role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Auth:           NewAuthHandler(&fakeAuth{}, &fakeProfile{user: &models.User{ID: "user-1"}}),
		Assessments:    NewAssessmentHandler(&fakeAssessments{}),
		History:        NewHistoryHandler(&fakeHistory{}),
		Workflows:      NewWorkflowHandler(&fakeWorkflows{scan: &models.StrategicScan{}}),
		Views:          NewViewHandler(&fakeViews{}),
		Exports:        NewExportHandler(&fakeExports{}),
		Classes:        NewClassHandler(nil),
		Lessons:        NewLessonHandler(nil),
		Accommodations: NewAccommodationHandler(nil),
		Interventions:  NewInterventionHandler(nil),
		Insights:       NewInsightsHandler(nil, nil),
	}, fakeAuthMiddleware(role), nil)
	return r
}

func TestRoutesRequireAuthentication(t *testing.T) {
	r := newTestRouter(models.RoleTeacher)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesServeTeacher(t *testing.T) {
	r := newTestRouter(models.RoleTeacher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRejectTeacher(t *testing.T) {
	r := newTestRouter(models.RoleTeacher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesServeAdmin(t *testing.T) {
	r := newTestRouter(models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
