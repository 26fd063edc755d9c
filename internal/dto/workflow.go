package dto

import "github.com/noah-isme/edupro-navigator/internal/models"

// MediaInput is an uploaded artefact encoded as base64 or a data URL.
type MediaInput struct {
	Data     string `json:"data" validate:"required"`
	MIMEType string `json:"mimeType" validate:"omitempty,max=100"`
}

// PlannerReviewRequest submits a lesson plan for review. Media carries the
// plan file; PlanText may be used instead for pasted plans.
type PlannerReviewRequest struct {
	Media      *MediaInput `json:"media" validate:"required_without=PlanText"`
	PlanText   string      `json:"planText" validate:"required_without=Media"`
	Focus      string      `json:"focus" validate:"required,max=200"`
	Curriculum string      `json:"curriculum" validate:"omitempty,max=200"`
	TierNotes  string      `json:"tierNotes" validate:"omitempty,max=4000"`
	ClassID    string      `json:"classId" validate:"omitempty,max=64"`
	Grade      string      `json:"grade" validate:"omitempty,max=60"`
}

// AnalyzerReviewRequest submits a delivered lesson recording or transcript.
type AnalyzerReviewRequest struct {
	Media      *MediaInput `json:"media" validate:"required_without=Transcript"`
	Transcript string      `json:"transcript" validate:"required_without=Media"`
	LessonID   string      `json:"lessonId" validate:"omitempty,max=64"`
}

// CoachingRequest submits student scores for coaching.
type CoachingRequest struct {
	ClassID       string                `json:"classId" validate:"omitempty,max=64"`
	Scores        []models.StudentScore `json:"scores" validate:"required,min=1,dive"`
	Reflection    string                `json:"reflection" validate:"omitempty,max=4000"`
	BehaviorNotes string                `json:"behaviorNotes" validate:"omitempty,max=4000"`
	Evidence      *MediaInput           `json:"evidence" validate:"omitempty"`
}

// RefineRequest carries coaching feedback to fold into a stored lesson.
type RefineRequest struct {
	Feedback string `json:"feedback" validate:"required,max=8000"`
}

// SuggestInterventionsRequest narrows group suggestions to one class.
type SuggestInterventionsRequest struct {
	ClassID string `json:"classId" validate:"omitempty,max=64"`
}

// PredictGrowthRequest narrows the projection to one class.
type PredictGrowthRequest struct {
	ClassID string `json:"classId" validate:"omitempty,max=64"`
}

// StrategicScanRequest selects the campus for the admin scan.
type StrategicScanRequest struct {
	Campus string `json:"campus" validate:"omitempty,max=120"`
}
