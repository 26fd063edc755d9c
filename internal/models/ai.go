package models

// Narrative is AI prose returned as markdown plus rendered HTML.
type Narrative struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// PlanningReview is the result of a lesson plan review. Score is nil when the
// response carried no planning marker.
type PlanningReview struct {
	Narrative
	Score    *float64 `json:"score,omitempty"`
	Unscored bool     `json:"unscored"`
	LessonID string   `json:"lessonId,omitempty"`
}

// ExecutionReview is the result of a delivered lesson review. Each score is
// independently optional.
type ExecutionReview struct {
	Narrative
	DiscourseScore *float64 `json:"discourseScore,omitempty"`
	AlignmentScore *float64 `json:"alignmentScore,omitempty"`
	PacingScore    *float64 `json:"pacingScore,omitempty"`
	LessonID       string   `json:"lessonId,omitempty"`
}

// CoachingAdvice is the coaching narrative for a set of student scores.
type CoachingAdvice struct {
	Narrative
	ClassAverage float64          `json:"classAverage"`
	Tiers        TierDistribution `json:"tiers"`
}

// RefinedPlan is a lesson rewritten from coaching feedback.
type RefinedPlan struct {
	Narrative
	Lesson Lesson `json:"lesson"`
}

// HeatMapCell scores one instructional dimension campus-wide.
type HeatMapCell struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Status    string  `json:"status"`
}

// PDNeed names the top professional development area.
type PDNeed struct {
	Area      string `json:"area"`
	Rationale string `json:"rationale"`
}

// PDScan is the professional development needs scan.
type PDScan struct {
	HeatMap   []HeatMapCell `json:"heatMap"`
	TopPDNeed PDNeed        `json:"topPDNeed"`
	Insight   string        `json:"insight"`
}

// AuditFinding is one deviation between curriculum and active plans.
type AuditFinding struct {
	Area      string  `json:"area"`
	Finding   string  `json:"finding"`
	Deviation float64 `json:"deviation"`
}

// CurriculumAudit is the curriculum fidelity audit.
type CurriculumAudit struct {
	FidelityScore float64        `json:"fidelityScore"`
	AuditFindings []AuditFinding `json:"auditFindings"`
}

// BehaviorCluster groups recurring behavior issues.
type BehaviorCluster struct {
	Issue     string `json:"issue"`
	TimeBlock string `json:"timeBlock"`
	Grade     string `json:"grade"`
}

// PAXSolution is the recommended PAX kernel.
type PAXSolution struct {
	Kernel         string `json:"kernel"`
	Implementation string `json:"implementation"`
}

// BehaviorClusters is the behavior cluster detection result.
type BehaviorClusters struct {
	Clusters    []BehaviorCluster `json:"clusters"`
	PAXSolution PAXSolution       `json:"paxSolution"`
}

// StrategicScan bundles the three admin scans. A scan whose response could
// not be parsed is nil and listed in Unavailable.
type StrategicScan struct {
	Campus      string            `json:"campus"`
	PD          *PDScan           `json:"pd"`
	Audit       *CurriculumAudit  `json:"audit"`
	Behavior    *BehaviorClusters `json:"behavior"`
	Unavailable []string          `json:"unavailable,omitempty"`
}

// InterventionSuggestion is one proposed small group.
type InterventionSuggestion struct {
	Skill        string   `json:"skill"`
	StudentNames []string `json:"studentNames"`
	Tier         int      `json:"tier"`
	LessonPlan   string   `json:"lessonPlan"`
}

// Projection forecasts one assessment window.
type Projection struct {
	PredictedScore float64 `json:"predictedScore"`
	Confidence     float64 `json:"confidence"`
	RiskLevel      string  `json:"riskLevel"`
	Reasoning      string  `json:"reasoning"`
	Intervention   string  `json:"intervention"`
}

// GrowthPrediction holds middle and end of year projections.
type GrowthPrediction struct {
	MOY Projection `json:"moy"`
	EOY Projection `json:"eoy"`
}
