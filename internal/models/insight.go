package models

import "time"

// Tier labels for score bands.
const (
	Tier1 = "Tier 1"
	Tier2 = "Tier 2"
	Tier3 = "Tier 3"
)

// TierDistribution counts students per intervention tier.
type TierDistribution struct {
	Tier1 int `json:"tier1"`
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`
}

// SeriesPoint is one history value in chronological order.
type SeriesPoint struct {
	Date   time.Time `json:"date"`
	Metric float64   `json:"metric"`
	Label  string    `json:"label"`
}

// Insights is the growth dashboard for one educator.
type Insights struct {
	Mastery          float64                       `json:"mastery"`
	MasteryTrend     float64                       `json:"masteryTrend"`
	Discourse        float64                       `json:"discourse"`
	DiscourseTrend   float64                       `json:"discourseTrend"`
	Alignment        float64                       `json:"alignment"`
	AlignmentTrend   float64                       `json:"alignmentTrend"`
	Pacing           float64                       `json:"pacing"`
	PacingTrend      float64                       `json:"pacingTrend"`
	AssessmentAvg    float64                       `json:"assessmentAvg"`
	AssessmentTrend  float64                       `json:"assessmentTrend"`
	TotalSessions    int                           `json:"totalSessions"`
	TotalAssessments int                           `json:"totalAssessments"`
	Readiness        float64                       `json:"readiness"`
	Tiers            TierDistribution              `json:"tiers"`
	Series           map[HistoryType][]SeriesPoint `json:"series"`
	GeneratedAt      time.Time                     `json:"generatedAt"`
}

// TeacherSummary aggregates one educator's outcomes for campus views.
type TeacherSummary struct {
	ID               string  `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	Grade            string  `db:"grade" json:"grade"`
	Subject          string  `db:"-" json:"subject"`
	CampusName       string  `db:"campus_name" json:"campusName"`
	AvgMastery       float64 `db:"avg_mastery" json:"avgMastery"`
	PlanningScore    float64 `db:"planning_score" json:"planningScore"`
	FidelityScore    float64 `db:"fidelity_score" json:"fidelityScore"`
	LastIntervention string  `db:"last_intervention" json:"lastIntervention"`
}

// CampusOverview is the admin campus dashboard.
type CampusOverview struct {
	Campus      string           `json:"campus"`
	Teachers    []TeacherSummary `json:"teachers"`
	CampusAvg   float64          `json:"campusAvg"`
	PlanningAvg float64          `json:"planningAvg"`
}

// BehaviorLog is one signal fed to behavior cluster detection.
type BehaviorLog struct {
	Source string  `db:"source" json:"source"`
	Grade  string  `db:"grade" json:"grade"`
	Detail string  `db:"detail" json:"detail"`
	Metric float64 `db:"metric" json:"metric"`
}
