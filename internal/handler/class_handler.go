package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type classService interface {
	List(ctx context.Context, userID string) ([]models.Class, error)
	Create(ctx context.Context, userID string, req models.ClassInput) (*models.Class, error)
	Update(ctx context.Context, userID, id string, req models.ClassUpdate) (*models.Class, error)
	SaveAll(ctx context.Context, userID string, inputs []models.ClassInput) ([]models.Class, error)
	Delete(ctx context.Context, userID, id string) error
}

// ClassHandler exposes class period endpoints.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	classes, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.ClassInput true "Class"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ClassInput
	if !bindJSON(c, &req, "class") {
		return
	}
	class, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// SaveAll godoc
// @Summary Save all classes
// @Description Create or replace the submitted classes in one step
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body []models.ClassInput true "Classes"
// @Success 200 {object} response.Envelope
// @Router /classes [put]
func (h *ClassHandler) SaveAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req []models.ClassInput
	if !bindJSON(c, &req, "classes") {
		return
	}
	classes, err := h.service.SaveAll(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.ClassUpdate true "Fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ClassUpdate
	if !bindJSON(c, &req, "class") {
		return
	}
	class, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
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
