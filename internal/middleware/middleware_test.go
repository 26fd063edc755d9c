package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type recordingObserver struct {
	path   string
	status int
}

func (r *recordingObserver) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	r.path = path
	r.status = status
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secure", append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.UserIDKey))
	})...)
	return r
}

func TestJWTMissingHeader(t *testing.T) {
	r := newRouter(JWT(&stubValidator{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")
}

func TestJWTInvalidScheme(t *testing.T) {
	r := newRouter(JWT(&stubValidator{}))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := newRouter(JWT(&stubValidator{err: appErrors.Clone(appErrors.ErrNotAuthenticated, "invalid token")}))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTSetsUser(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}}
	r := newRouter(JWT(validator))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", rec.Body.String())
	assert.Equal(t, "good-token", validator.token)
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		role   models.UserRole
		status int
	}{
		{models.RoleTeacher, http.StatusForbidden},
		{models.RoleAdmin, http.StatusOK},
		{models.RoleDistrictAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			validator := &stubValidator{claims: &models.JWTClaims{UserID: "u", Role: tc.role}}
			r := newRouter(JWT(validator), RequireAdmin())

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer t")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newRouter(RequireRoles(models.RoleTeacher))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/lessons/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons/abc", nil))
	assert.Equal(t, "/lessons/:id", observer.path)
	assert.Equal(t, http.StatusNoContent, observer.status)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", observer.path)
}
