package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/genai"
	"github.com/noah-isme/edupro-navigator/pkg/markdown"
	"github.com/noah-isme/edupro-navigator/pkg/media"
	"github.com/noah-isme/edupro-navigator/pkg/scoremarker"
)

// Bridge operation names, also used as metric labels.
const (
	OpReviewPlan      = "review_plan"
	OpReviewExecution = "review_execution"
	OpCoach           = "coach"
	OpRefinePlan      = "refine_plan"
	OpPDScan          = "pd_scan"
	OpCurriculumAudit = "curriculum_audit"
	OpBehaviorCluster = "behavior_clusters"
	OpSuggestGroups   = "suggest_interventions"
	OpPredictGrowth   = "predict_growth"
)

// PlanReviewInput feeds a lesson plan review.
type PlanReviewInput struct {
	Media          *media.Upload
	PlanText       string
	Focus          string
	Curriculum     string
	TierNotes      string
	Accommodations string
	Grade          string
}

// ExecutionInput feeds a delivered lesson review. Either Media or
// Transcript must be present.
type ExecutionInput struct {
	Media      *media.Upload
	Transcript string
	PlanText   string
}

// CoachingInput feeds a coaching request.
type CoachingInput struct {
	Scores         []models.StudentScore
	Reflection     string
	BehaviorNotes  string
	Evidence       *media.Upload
	Accommodations string
}

// AIBridge turns domain requests into generation calls and parses the
// responses into typed results.
type AIBridge struct {
	generator genai.Generator
	logger    *zap.Logger
}

// NewAIBridge constructs an AIBridge.
func NewAIBridge(generator genai.Generator, logger *zap.Logger) *AIBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIBridge{generator: generator, logger: logger}
}

// ReviewLessonPlan rewrites a plan to Distinguished level. Score is nil
// when the response carries no planning marker.
func (b *AIBridge) ReviewLessonPlan(ctx context.Context, in PlanReviewInput) (*models.PlanningReview, error) {
	if strings.TrimSpace(in.Focus) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson focus is required")
	}
	if in.Media == nil && strings.TrimSpace(in.PlanText) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a lesson plan file or text is required")
	}
	parts := mediaParts(in.Media)
	parts = append(parts, genai.Part{Text: planReviewPrompt(in)})

	text, err := b.generator.Generate(ctx, genai.Request{Operation: OpReviewPlan, Parts: parts})
	if err != nil {
		return nil, err
	}
	review := &models.PlanningReview{Narrative: narrative(text)}
	if score, ok := scoremarker.Extract(text, scoremarker.Planning); ok {
		review.Score = &score
	} else {
		review.Unscored = true
	}
	return review, nil
}

// ReviewExecution reviews a recording or transcript. Each score is nil when
// its marker is absent.
func (b *AIBridge) ReviewExecution(ctx context.Context, in ExecutionInput) (*models.ExecutionReview, error) {
	if in.Media == nil && strings.TrimSpace(in.Transcript) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a recording or transcript is required")
	}
	parts := mediaParts(in.Media)
	parts = append(parts, genai.Part{Text: executionPrompt(in)})

	text, err := b.generator.Generate(ctx, genai.Request{Operation: OpReviewExecution, Parts: parts})
	if err != nil {
		return nil, err
	}
	review := &models.ExecutionReview{Narrative: narrative(text)}
	scores := scoremarker.ExtractAll(text, scoremarker.Discourse, scoremarker.Alignment, scoremarker.Pacing)
	review.DiscourseScore = scores.Ptr(scoremarker.Discourse)
	review.AlignmentScore = scores.Ptr(scoremarker.Alignment)
	review.PacingScore = scores.Ptr(scoremarker.Pacing)
	return review, nil
}

// Coach produces coaching text for a set of scores.
func (b *AIBridge) Coach(ctx context.Context, in CoachingInput) (*models.CoachingAdvice, error) {
	if len(in.Scores) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one score is required")
	}
	average := ClassAverage(in.Scores)
	parts := []genai.Part{{Text: coachingPrompt(in, average)}}
	parts = append(parts, mediaParts(in.Evidence)...)

	text, err := b.generator.Generate(ctx, genai.Request{Operation: OpCoach, Parts: parts})
	if err != nil {
		return nil, err
	}
	return &models.CoachingAdvice{Narrative: narrative(text), ClassAverage: average, Tiers: Tiers(in.Scores)}, nil
}

// RefinePlan rewrites a plan from coaching feedback.
func (b *AIBridge) RefinePlan(ctx context.Context, original, feedback string) (models.Narrative, error) {
	if strings.TrimSpace(feedback) == "" {
		return models.Narrative{}, appErrors.Clone(appErrors.ErrValidation, "feedback is required")
	}
	text, err := b.generator.Generate(ctx, genai.Request{Operation: OpRefinePlan, Parts: []genai.Part{{Text: refinePrompt(original, feedback)}}})
	if err != nil {
		return models.Narrative{}, err
	}
	return narrative(text), nil
}

// ScanPDNeeds rates campus instructional dimensions from teacher metrics.
func (b *AIBridge) ScanPDNeeds(ctx context.Context, teachers []models.TeacherSummary) (*models.PDScan, error) {
	var scan models.PDScan
	if err := b.structured(ctx, OpPDScan, pdScanPrompt(mustJSON(teachers)), &scan); err != nil {
		return nil, err
	}
	if len(scan.HeatMap) == 0 && scan.TopPDNeed.Area == "" {
		return nil, malformed(OpPDScan, errors.New("empty heat map"))
	}
	for i := range scan.HeatMap {
		scan.HeatMap[i].Score = ClampScore(scan.HeatMap[i].Score)
	}
	return &scan, nil
}

// AuditCurriculum scores plan fidelity for a campus.
func (b *AIBridge) AuditCurriculum(ctx context.Context, campus string, lessons []models.Lesson) (*models.CurriculumAudit, error) {
	var audit models.CurriculumAudit
	if err := b.structured(ctx, OpCurriculumAudit, auditPrompt(campus, mustJSON(toPromptLessons(lessons))), &audit); err != nil {
		return nil, err
	}
	audit.FidelityScore = ClampScore(audit.FidelityScore)
	if audit.AuditFindings == nil {
		audit.AuditFindings = []models.AuditFinding{}
	}
	return &audit, nil
}

// DetectBehaviorClusters groups behavior signals and recommends a PAX kernel.
func (b *AIBridge) DetectBehaviorClusters(ctx context.Context, logs []models.BehaviorLog) (*models.BehaviorClusters, error) {
	var clusters models.BehaviorClusters
	if err := b.structured(ctx, OpBehaviorCluster, behaviorPrompt(mustJSON(logs)), &clusters); err != nil {
		return nil, err
	}
	if clusters.Clusters == nil {
		clusters.Clusters = []models.BehaviorCluster{}
	}
	return &clusters, nil
}

// SuggestInterventions proposes tiered groups.
func (b *AIBridge) SuggestInterventions(ctx context.Context, assessments []models.Assessment, history []models.HistoryEntry) ([]models.InterventionSuggestion, error) {
	var suggestions []models.InterventionSuggestion
	prompt := interventionPrompt(mustJSON(toPromptAssessments(assessments)), mustJSON(toPromptHistory(history)))
	if err := b.structured(ctx, OpSuggestGroups, prompt, &suggestions); err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []models.InterventionSuggestion{}
	}
	return suggestions, nil
}

// PredictGrowth projects MOY and EOY outcomes.
func (b *AIBridge) PredictGrowth(ctx context.Context, assessments []models.Assessment, mastery []models.HistoryEntry) (*models.GrowthPrediction, error) {
	var prediction models.GrowthPrediction
	prompt := predictionPrompt(mustJSON(toPromptAssessments(assessments)), mustJSON(toPromptHistory(mastery)))
	if err := b.structured(ctx, OpPredictGrowth, prompt, &prediction); err != nil {
		return nil, err
	}
	for _, p := range []*models.Projection{&prediction.MOY, &prediction.EOY} {
		p.PredictedScore = ClampScore(p.PredictedScore)
		p.Confidence = ClampScore(p.Confidence)
	}
	return &prediction, nil
}

func (b *AIBridge) structured(ctx context.Context, operation, prompt string, dest interface{}) error {
	text, err := b.generator.Generate(ctx, genai.Request{Operation: operation, Parts: []genai.Part{{Text: prompt}}, JSON: true})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFence(text)), dest); err != nil {
		b.logger.Warn("unparseable AI response", zap.String("operation", operation), zap.Error(err))
		return malformed(operation, err)
	}
	return nil
}

func malformed(operation string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrMalformedAIResponse.Code, appErrors.ErrMalformedAIResponse.Status, "no insight available for "+strings.ReplaceAll(operation, "_", " "))
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}

func narrative(text string) models.Narrative {
	return models.Narrative{Markdown: text, HTML: markdown.ToHTML(text)}
}

func mediaParts(upload *media.Upload) []genai.Part {
	if upload == nil || len(upload.Data) == 0 {
		return nil
	}
	return []genai.Part{{Data: upload.Data, MIMEType: upload.MIMEType}}
}

func mustJSON(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return "[]"
	}
	return string(data)
}
