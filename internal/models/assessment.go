package models

import "time"

// AssessmentType enumerates the assessment windows.
type AssessmentType string

const (
	AssessmentBOY        AssessmentType = "BOY"
	AssessmentUnit       AssessmentType = "Unit"
	AssessmentMOY        AssessmentType = "MOY"
	AssessmentEOY        AssessmentType = "EOY"
	AssessmentDiagnostic AssessmentType = "Diagnostic"
	AssessmentBenchmark  AssessmentType = "Benchmark"
)

// StudentScore is one student's result.
type StudentScore struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Score float64 `json:"score"`
}

// Assessment is a scored class assessment. Average is computed once at save
// time and never recomputed.
type Assessment struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"userId"`
	ClassID       *string        `db:"class_id" json:"classId,omitempty"`
	Title         string         `db:"title" json:"title"`
	Type          AssessmentType `db:"type" json:"type"`
	Subject       string         `db:"subject" json:"subject"`
	Scores        StudentScores  `db:"scores" json:"scores"`
	Average       float64        `db:"average" json:"average"`
	Reflection    string         `db:"reflection" json:"reflection,omitempty"`
	BehaviorNotes string         `db:"behavior_notes" json:"behaviorNotes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"date"`
}

// AssessmentInput is the payload for saving an assessment.
type AssessmentInput struct {
	ClassID       *string        `json:"classId" validate:"omitempty,max=64"`
	Title         string         `json:"title" validate:"required,max=200"`
	Type          AssessmentType `json:"type" validate:"required,oneof=BOY Unit MOY EOY Diagnostic Benchmark"`
	Subject       string         `json:"subject" validate:"omitempty,max=80"`
	Scores        []StudentScore `json:"scores" validate:"dive"`
	Reflection    string         `json:"reflection" validate:"omitempty,max=4000"`
	BehaviorNotes string         `json:"behaviorNotes" validate:"omitempty,max=4000"`
}
