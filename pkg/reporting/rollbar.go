// Package reporting forwards server errors to Rollbar.
package reporting

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/pkg/config"
	"github.com/noah-isme/edupro-navigator/pkg/logger"
	"github.com/noah-isme/edupro-navigator/pkg/middleware/requestid"
)

type notifier interface {
	RequestErrorWithExtras(level string, r *http.Request, err error, extras map[string]interface{})
	Close() error
}

// Reporter sends errors attached to 5xx responses. A nil Reporter is a no-op.
type Reporter struct {
	client notifier
	logger *zap.Logger
}

// New returns nil when no token is configured.
func New(cfg config.ReportingConfig, env string, log *zap.Logger) *Reporter {
	if cfg.RollbarToken == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := rollbar.New(cfg.RollbarToken, env, cfg.CodeVersion, cfg.ServerHost, "github.com/noah-isme/edupro-navigator")
	return &Reporter{client: client, logger: log}
}

// Middleware reports every error a handler attached to a 5xx response.
func (r *Reporter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if r == nil || c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		extras := map[string]interface{}{
			"request_id": requestid.Value(c),
			"route":      c.FullPath(),
			"status":     c.Writer.Status(),
		}
		if userID, ok := c.Get(logger.UserIDKey); ok {
			extras["user_id"] = userID
		}
		for _, ginErr := range c.Errors {
			r.client.RequestErrorWithExtras(rollbar.ERR, c.Request, ginErr.Err, extras)
		}
	}
}

// Close flushes queued reports.
func (r *Reporter) Close() {
	if r == nil {
		return
	}
	if err := r.client.Close(); err != nil {
		r.logger.Warn("failed to flush rollbar", zap.Error(err))
	}
}
