package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/dto"
	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type workflowService interface {
	ReviewPlan(ctx context.Context, userID string, req dto.PlannerReviewRequest) (*models.PlanningReview, error)
	ReviewExecution(ctx context.Context, userID string, req dto.AnalyzerReviewRequest) (*models.ExecutionReview, error)
	Coach(ctx context.Context, userID string, req dto.CoachingRequest) (*models.CoachingAdvice, error)
	Refine(ctx context.Context, userID, lessonID string, req dto.RefineRequest) (*models.RefinedPlan, error)
	SuggestInterventions(ctx context.Context, userID string, req dto.SuggestInterventionsRequest) ([]models.InterventionGroup, error)
	PredictGrowth(ctx context.Context, userID string, req dto.PredictGrowthRequest) (*models.GrowthPrediction, error)
	StrategicScan(ctx context.Context, userID string, req dto.StrategicScanRequest) (*models.StrategicScan, error)
}

// WorkflowHandler exposes the AI-backed page actions. Each action runs
// through the caller's view controller for that page.
type WorkflowHandler struct {
	service workflowService
}

// NewWorkflowHandler constructs a workflow handler.
func NewWorkflowHandler(svc workflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

// ReviewPlan godoc
// @Summary Review lesson plan
// @Description Reviews a plan file or pasted plan, stores the rewritten plan and records the planning score when present
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlannerReviewRequest true "Plan"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /planner/review [post]
func (h *WorkflowHandler) ReviewPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PlannerReviewRequest
	if !bindJSON(c, &req, "planner") {
		return
	}
	review, err := h.service.ReviewPlan(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review, map[string]interface{}{"unscored": review.Unscored})
}

// ReviewExecution godoc
// @Summary Review delivered lesson
// @Tags Analyzer
// @Accept json
// @Produce json
// @Param payload body dto.AnalyzerReviewRequest true "Recording or transcript"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /analyzer/review [post]
func (h *WorkflowHandler) ReviewExecution(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.AnalyzerReviewRequest
	if !bindJSON(c, &req, "analyzer") {
		return
	}
	review, err := h.service.ReviewExecution(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review)
}

// Coach godoc
// @Summary Coaching session
// @Tags Coaching
// @Accept json
// @Produce json
// @Param payload body dto.CoachingRequest true "Scores and reflection"
// @Success 200 {object} response.Envelope
// @Router /coaching [post]
func (h *WorkflowHandler) Coach(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CoachingRequest
	if !bindJSON(c, &req, "coaching") {
		return
	}
	advice, err := h.service.Coach(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, advice)
}

// Refine godoc
// @Summary Refine stored lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.RefineRequest true "Feedback"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/refine [post]
func (h *WorkflowHandler) Refine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.RefineRequest
	if !bindJSON(c, &req, "refine") {
		return
	}
	refined, err := h.service.Refine(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, refined)
}

// SuggestInterventions godoc
// @Summary Suggest intervention groups
// @Tags Interventions
// @Accept json
// @Produce json
// @Param payload body dto.SuggestInterventionsRequest false "Scope"
// @Success 201 {object} response.Envelope
// @Router /interventions/suggest [post]
func (h *WorkflowHandler) SuggestInterventions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.SuggestInterventionsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "intervention suggestion") {
		return
	}
	groups, err := h.service.SuggestInterventions(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, groups, nil)
}

// PredictGrowth godoc
// @Summary Predict growth
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body dto.PredictGrowthRequest false "Scope"
// @Success 200 {object} response.Envelope
// @Router /insights/predict [post]
func (h *WorkflowHandler) PredictGrowth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PredictGrowthRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "prediction") {
		return
	}
	prediction, err := h.service.PredictGrowth(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, prediction)
}

// StrategicScan godoc
// @Summary Campus strategic scan
// @Description Runs the PD needs, curriculum fidelity and behavior cluster scans; unparseable scans come back empty
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.StrategicScanRequest false "Campus"
// @Success 200 {object} response.Envelope
// @Router /admin/scan [post]
func (h *WorkflowHandler) StrategicScan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.StrategicScanRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "strategic scan") {
		return
	}
	scan, err := h.service.StrategicScan(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, scan)
}
