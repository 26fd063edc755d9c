package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type accommodationService interface {
	List(ctx context.Context, userID, classID string) ([]models.Accommodation, error)
	Create(ctx context.Context, userID string, req models.AccommodationInput) (*models.Accommodation, error)
	Delete(ctx context.Context, userID, id string) error
}

// AccommodationHandler exposes SPED accommodation records.
type AccommodationHandler struct {
	service accommodationService
}

// NewAccommodationHandler constructs an accommodation handler.
func NewAccommodationHandler(svc accommodationService) *AccommodationHandler {
	return &AccommodationHandler{service: svc}
}

// List godoc
// @Summary List accommodations
// @Tags Accommodations
// @Produce json
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /accommodations [get]
func (h *AccommodationHandler) List(c *gin.Context) {
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

// Create godoc
// @Summary Save accommodation
// @Tags Accommodations
// @Accept json
// @Produce json
// @Param payload body models.AccommodationInput true "Accommodation"
// @Success 201 {object} response.Envelope
// @Router /accommodations [post]
func (h *AccommodationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AccommodationInput
	if !bindJSON(c, &req, "accommodation") {
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
// @Summary Delete accommodation
// @Tags Accommodations
// @Param id path string true "Accommodation ID"
// @Success 204 {object} response.Envelope
// @Router /accommodations/{id} [delete]
func (h *AccommodationHandler) Delete(c *gin.Context) {
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
