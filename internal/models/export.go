package models

import "time"

// ExportKind selects the records to export.
type ExportKind string

const (
	ExportAssessments ExportKind = "assessments"
	ExportHistory     ExportKind = "history"
)

// ExportFormat selects the output format.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportRequest asks for a rendered report of the caller's records.
type ExportRequest struct {
	Kind    ExportKind   `json:"kind" validate:"required,oneof=assessments history"`
	Format  ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	ClassID string       `json:"classId" validate:"omitempty,max=64"`
}

// ExportResult points at a rendered report.
type ExportResult struct {
	Token       string    `json:"token"`
	DownloadURL string    `json:"downloadUrl"`
	FileName    string    `json:"fileName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
