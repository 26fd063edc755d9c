package models

import "time"

// ViewStatus is the state of a per-page controller.
type ViewStatus string

const (
	ViewIdle    ViewStatus = "idle"
	ViewLoading ViewStatus = "loading"
	ViewResult  ViewStatus = "result"
	ViewError   ViewStatus = "error"
)

// ViewPage names the pages that drive AI workflows.
type ViewPage string

const (
	PagePlanner       ViewPage = "planner"
	PageAnalyzer      ViewPage = "analyzer"
	PageCoaching      ViewPage = "coaching"
	PageRefine        ViewPage = "refine"
	PageInterventions ViewPage = "interventions"
	PageInsights      ViewPage = "insights"
	PageAdmin         ViewPage = "admin"
)

// Valid reports whether p is a known page.
func (p ViewPage) Valid() bool {
	switch p {
	case PagePlanner, PageAnalyzer, PageCoaching, PageRefine, PageInterventions, PageInsights, PageAdmin:
		return true
	}
	return false
}

// ViewFailure is the user-visible failure of the last submission.
type ViewFailure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ViewState is a snapshot of one controller.
type ViewState struct {
	Page       ViewPage     `json:"page"`
	Status     ViewStatus   `json:"status"`
	Result     interface{}  `json:"result,omitempty"`
	Error      *ViewFailure `json:"error,omitempty"`
	StartedAt  *time.Time   `json:"startedAt,omitempty"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
}
