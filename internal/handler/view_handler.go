package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type viewRegistry interface {
	State(userID string, page models.ViewPage) models.ViewState
	Reset(userID string, page models.ViewPage) (models.ViewState, error)
}

// ViewHandler exposes per-page controller state.
type ViewHandler struct {
	views viewRegistry
}

// NewViewHandler constructs a view handler.
func NewViewHandler(views viewRegistry) *ViewHandler {
	return &ViewHandler{views: views}
}

// State godoc
// @Summary Page state
// @Description idle, loading, result or error for the caller's page controller
// @Tags Views
// @Produce json
// @Param page path string true "planner, analyzer, coaching, refine, interventions, insights, admin"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /views/{page} [get]
func (h *ViewHandler) State(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	response.OK(c, h.views.State(userID, page))
}

// Reset godoc
// @Summary Start new
// @Description Returns the page controller to idle; rejected while a submission is loading
// @Tags Views
// @Produce json
// @Param page path string true "Page"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /views/{page}/reset [post]
func (h *ViewHandler) Reset(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	state, err := h.views.Reset(userID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

func pageParam(c *gin.Context) (models.ViewPage, bool) {
	page := models.ViewPage(c.Param("page"))
	if !page.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown page"))
		return "", false
	}
	return page, true
}
