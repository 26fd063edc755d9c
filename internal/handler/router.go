package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/middleware"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth           *AuthHandler
	Classes        *ClassHandler
	Lessons        *LessonHandler
	Assessments    *AssessmentHandler
	Accommodations *AccommodationHandler
	Interventions  *InterventionHandler
	History        *HistoryHandler
	Insights       *InsightsHandler
	Workflows      *WorkflowHandler
	Views          *ViewHandler
	Exports        *ExportHandler
}

// RegisterRoutes mounts the API on group. auth must resolve the caller.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, auth gin.HandlerFunc, log *zap.Logger) {
	group.POST("/auth/sign-in", h.Auth.SignIn)

	secured := group.Group("")
	secured.Use(auth)

	secured.POST("/auth/sign-out", h.Auth.SignOut)
	secured.GET("/me", h.Auth.Me)
	secured.PUT("/me", middleware.Audit(log, "profile"), h.Auth.UpdateProfile)

	classes := secured.Group("/classes", middleware.Audit(log, "classes"))
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.PUT("", h.Classes.SaveAll)
	classes.PATCH("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)

	lessons := secured.Group("/lessons", middleware.Audit(log, "lessons"))
	lessons.GET("", h.Lessons.List)
	lessons.POST("", h.Lessons.Create)
	lessons.GET("/:id", h.Lessons.Get)
	lessons.PATCH("/:id", h.Lessons.Update)
	lessons.DELETE("/:id", h.Lessons.Delete)
	lessons.POST("/:id/refine", h.Workflows.Refine)

	assessments := secured.Group("/assessments", middleware.Audit(log, "assessments"))
	assessments.GET("", h.Assessments.List)
	assessments.POST("", h.Assessments.Create)
	assessments.GET("/:id", h.Assessments.Get)
	assessments.DELETE("/:id", h.Assessments.Delete)

	accommodations := secured.Group("/accommodations", middleware.Audit(log, "accommodations"))
	accommodations.GET("", h.Accommodations.List)
	accommodations.POST("", h.Accommodations.Create)
	accommodations.DELETE("/:id", h.Accommodations.Delete)

	interventions := secured.Group("/interventions", middleware.Audit(log, "interventions"))
	interventions.GET("", h.Interventions.List)
	interventions.POST("", h.Interventions.Create)
	interventions.POST("/suggest", h.Workflows.SuggestInterventions)
	interventions.PATCH("/:id", h.Interventions.Update)
	interventions.DELETE("/:id", h.Interventions.Delete)

	history := secured.Group("/history", middleware.Audit(log, "history"))
	history.GET("", h.History.List)
	history.DELETE("", h.History.Clear)

	secured.GET("/insights", h.Insights.Growth)
	secured.POST("/insights/predict", h.Workflows.PredictGrowth)
	secured.POST("/planner/review", h.Workflows.ReviewPlan)
	secured.POST("/analyzer/review", h.Workflows.ReviewExecution)
	secured.POST("/coaching", h.Workflows.Coach)

	secured.GET("/views/:page", h.Views.State)
	secured.POST("/views/:page/reset", h.Views.Reset)

	secured.POST("/exports", h.Exports.Generate)
	secured.GET("/exports/download", h.Exports.Download)

	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.GET("/campus", h.Insights.Campus)
	admin.POST("/scan", h.Workflows.StrategicScan)
}
