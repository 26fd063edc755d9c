package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type interventionService interface {
	List(ctx context.Context, userID, classID string) ([]models.InterventionGroup, error)
	Create(ctx context.Context, userID string, req models.InterventionInput) (*models.InterventionGroup, error)
	Update(ctx context.Context, userID, id string, req models.InterventionUpdate) (*models.InterventionGroup, error)
	Delete(ctx context.Context, userID, id string) error
}

// InterventionHandler exposes intervention groups.
type InterventionHandler struct {
	service interventionService
}

// NewInterventionHandler constructs an intervention handler.
func NewInterventionHandler(svc interventionService) *InterventionHandler {
	return &InterventionHandler{service: svc}
}

// List godoc
// @Summary List intervention groups
// @Tags Interventions
// @Produce json
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groups, err := h.service.List(c.Request.Context(), userID, c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, groups)
}

// Create godoc
// @Summary Save intervention group
// @Tags Interventions
// @Accept json
// @Produce json
// @Param payload body models.InterventionInput true "Group"
// @Success 201 {object} response.Envelope
// @Router /interventions [post]
func (h *InterventionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.InterventionInput
	if !bindJSON(c, &req, "intervention") {
		return
	}
	group, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update intervention group
// @Description Edits a group or advances its status; delivering appends an intervention history entry
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body models.InterventionUpdate true "Fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interventions/{id} [patch]
func (h *InterventionHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.InterventionUpdate
	if !bindJSON(c, &req, "intervention") {
		return
	}
	group, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, group)
}

// Delete godoc
// @Summary Delete intervention group
// @Tags Interventions
// @Param id path string true "Group ID"
// @Success 204 {object} response.Envelope
// @Router /interventions/{id} [delete]
func (h *InterventionHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
