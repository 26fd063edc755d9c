package models

import "time"

// HistoryType classifies a history entry.
type HistoryType string

const (
	HistoryPlanning     HistoryType = "planning"
	HistoryExecution    HistoryType = "execution"
	HistoryCoaching     HistoryType = "coaching"
	HistoryAlignment    HistoryType = "alignment"
	HistoryPacing       HistoryType = "pacing"
	HistoryAssessment   HistoryType = "assessment"
	HistoryIntervention HistoryType = "intervention"
)

// HistoryEntry is an append-only outcome row used for trend display.
type HistoryEntry struct {
	ID           string      `db:"id" json:"id"`
	UserID       string      `db:"user_id" json:"userId"`
	Type         HistoryType `db:"type" json:"type"`
	Metric       float64     `db:"metric" json:"metric"`
	Label        string      `db:"label" json:"label"`
	LessonID     *string     `db:"lesson_id" json:"lessonId,omitempty"`
	AssessmentID *string     `db:"assessment_id" json:"assessmentId,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"date"`
}
