package reporting

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/pkg/config"
)

type recordingNotifier struct {
	errs   []error
	closed bool
}

func (n *recordingNotifier) RequestErrorWithExtras(_ string, _ *http.Request, err error, _ map[string]interface{}) {
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) Close() error {
	n.closed = true
	return nil
}

func newRouter(r *Reporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(errors.New("not found"))
		c.Status(http.StatusNotFound)
	})
	return router
}

func TestMiddlewareReportsServerErrorsOnly(t *testing.T) {
	n := &recordingNotifier{}
	router := newRouter(&Reporter{client: n, logger: zap.NewNop()})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Len(t, n.errs, 1)
	assert.EqualError(t, n.errs[0], "db down")
}

func TestNilReporterIsNoop(t *testing.T) {
	var r *Reporter
	assert.Nil(t, New(config.ReportingConfig{}, "test", nil))

	rec := httptest.NewRecorder()
	newRouter(r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	r.Close()
}
