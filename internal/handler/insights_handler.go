package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type insightsService interface {
	Insights(ctx context.Context, userID string) (*models.Insights, error)
}

type campusService interface {
	Overview(ctx context.Context, campus string) (*models.CampusOverview, error)
}

// InsightsHandler exposes the growth and campus dashboards.
type InsightsHandler struct {
	insights insightsService
	campus   campusService
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(insights insightsService, campus campusService) *InsightsHandler {
	return &InsightsHandler{insights: insights, campus: campus}
}

// Growth godoc
// @Summary Growth dashboard
// @Description Averages, trends and tier distribution derived from the caller's history and assessments
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights [get]
func (h *InsightsHandler) Growth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insights, err := h.insights.Insights(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, insights)
}

// Campus godoc
// @Summary Campus overview
// @Tags Admin
// @Produce json
// @Param campus query string false "Campus name, all campuses when empty"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/campus [get]
func (h *InsightsHandler) Campus(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	overview, err := h.campus.Overview(c.Request.Context(), c.Query("campus"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}
