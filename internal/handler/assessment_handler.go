package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type assessmentService interface {
	List(ctx context.Context, userID, classID string) ([]models.Assessment, error)
	Get(ctx context.Context, userID, id string) (*models.Assessment, error)
	Create(ctx context.Context, userID string, req models.AssessmentInput) (*models.Assessment, error)
	Delete(ctx context.Context, userID, id string) error
}

// AssessmentHandler exposes assessment records.
type AssessmentHandler struct {
	service assessmentService
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(svc assessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: svc}
}

// List godoc
// @Summary List assessments
// @Tags Assessments
// @Produce json
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /assessments [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), userID, c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get assessment
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Create godoc
// @Summary Save assessment
// @Description Stores the assessment with its frozen average and appends an assessment history entry
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body models.AssessmentInput true "Assessment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AssessmentInput
	if !bindJSON(c, &req, "assessment") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete assessment
// @Tags Assessments
// @Param id path string true "Assessment ID"
// @Success 204 {object} response.Envelope
// @Router /assessments/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
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
