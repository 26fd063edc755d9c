package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type historyService interface {
	List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

// HistoryHandler exposes the append-only history log.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler(svc historyService) *HistoryHandler {
	return &HistoryHandler{service: svc}
}

// List godoc
// @Summary List history
// @Description History entries newest first, optionally filtered by comma separated types
// @Tags History
// @Produce json
// @Param type query string false "planning,execution,coaching,alignment,pacing,assessment,intervention"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := h.service.List(c.Request.Context(), userID, parseHistoryTypes(c.Query("type"))...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// Clear godoc
// @Summary Clear history
// @Tags History
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /history [delete]
func (h *HistoryHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	removed, err := h.service.Clear(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"removed": removed})
}

func parseHistoryTypes(raw string) []models.HistoryType {
	if raw == "" {
		return nil
	}
	var types []models.HistoryType
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, models.HistoryType(trimmed))
		}
	}
	return types
}
