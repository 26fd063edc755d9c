package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/media"
)

func TestAIBridgeReviewLessonPlanScored(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpReviewPlan] = "## Gap Analysis\nMissing tiers.\n\n**PLANNING SCORE:** 72/100"
	bridge := NewAIBridge(gen, nil)

	upload := &media.Upload{Data: []byte("%PDF-1.4"), MIMEType: "application/pdf"}
	review, err := bridge.ReviewLessonPlan(context.Background(), PlanReviewInput{Media: upload, Focus: "Fractions", Curriculum: "TEKS"})
	require.NoError(t, err)
	require.NotNil(t, review.Score)
	assert.Equal(t, 72.0, *review.Score)
	assert.False(t, review.Unscored)
	assert.Contains(t, review.HTML, "<h2")

	req := gen.last()
	require.Len(t, req.Parts, 2)
	assert.Equal(t, "application/pdf", req.Parts[0].MIMEType)
	assert.Contains(t, req.Parts[1].Text, "Target Lesson: Fractions")
	assert.False(t, req.JSON)
}

func TestAIBridgeReviewLessonPlanWithoutMarkerIsUnscored(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpReviewPlan] = "A great plan with no numeric rating."
	bridge := NewAIBridge(gen, nil)

	review, err := bridge.ReviewLessonPlan(context.Background(), PlanReviewInput{PlanText: "Day 1: warmup", Focus: "Fractions"})
	require.NoError(t, err)
	assert.Nil(t, review.Score)
	assert.True(t, review.Unscored)
	assert.Contains(t, gen.last().Parts[0].Text, "LESSON PLANS:\nDay 1: warmup")
}

func TestAIBridgeReviewLessonPlanRequiresInput(t *testing.T) {
	bridge := NewAIBridge(newFakeGenerator(), nil)

	_, err := bridge.ReviewLessonPlan(context.Background(), PlanReviewInput{Focus: "Fractions"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = bridge.ReviewLessonPlan(context.Background(), PlanReviewInput{PlanText: "plan"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAIBridgeReviewExecutionPartialScores(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpReviewExecution] = "Strong questioning.\nDISCOURSE SCORE: 84\nPACING SCORE - 61"
	bridge := NewAIBridge(gen, nil)

	review, err := bridge.ReviewExecution(context.Background(), ExecutionInput{Transcript: "T: What is a fraction?", PlanText: "Plan body"})
	require.NoError(t, err)
	require.NotNil(t, review.DiscourseScore)
	assert.Equal(t, 84.0, *review.DiscourseScore)
	assert.Nil(t, review.AlignmentScore)
	require.NotNil(t, review.PacingScore)
	assert.Equal(t, 61.0, *review.PacingScore)

	prompt := gen.last().Parts[0].Text
	assert.Contains(t, prompt, "TRANSCRIPT:")
	assert.Contains(t, prompt, "PLANNED LESSON")
}

func TestAIBridgeCoachComputesAverage(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpCoach] = "Re-teach plan"
	bridge := NewAIBridge(gen, nil)

	advice, err := bridge.Coach(context.Background(), CoachingInput{
		Scores:     []models.StudentScore{{Name: "Ana", Score: 55}, {Name: "Ben", Score: 85}},
		Reflection: "Students rushed",
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, advice.ClassAverage)
	assert.Equal(t, models.TierDistribution{Tier1: 1, Tier3: 1}, advice.Tiers)
	assert.Contains(t, gen.last().Parts[0].Text, "(Average: 70.00)")

	_, err = bridge.Coach(context.Background(), CoachingInput{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAIBridgeStructuredStripsFence(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpCurriculumAudit] = "```json\n{\"fidelityScore\": 130, \"auditFindings\": [{\"area\": \"Unit 3\", \"finding\": \"Skipped\", \"deviation\": 12}]}\n```"
	bridge := NewAIBridge(gen, nil)

	audit, err := bridge.AuditCurriculum(context.Background(), "North", []models.Lesson{{Focus: "Fractions", Content: strings.Repeat("x", 2000)}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, audit.FidelityScore)
	require.Len(t, audit.AuditFindings, 1)
	assert.True(t, gen.last().JSON)
	assert.NotContains(t, gen.last().Parts[0].Text, strings.Repeat("x", 1300))
}

func TestAIBridgeMalformedJSON(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpBehaviorCluster] = "Sorry, I cannot help with that."
	gen.responses[OpPDScan] = "{}"
	bridge := NewAIBridge(gen, nil)

	_, err := bridge.DetectBehaviorClusters(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedAIResponse))

	_, err = bridge.ScanPDNeeds(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedAIResponse))
}

func TestAIBridgeSuggestInterventions(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpSuggestGroups] = `[{"skill":"Decoding","studentNames":["Ana","Ben"],"tier":3,"lessonPlan":"15 min"}]`
	bridge := NewAIBridge(gen, nil)

	suggestions, err := bridge.SuggestInterventions(context.Background(), []models.Assessment{{Title: "BOY", Average: 55}}, nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, []string{"Ana", "Ben"}, suggestions[0].StudentNames)
}

func TestAIBridgePredictGrowthClamps(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[OpPredictGrowth] = `{"moy":{"predictedScore":120,"confidence":80,"riskLevel":"Low"},"eoy":{"predictedScore":-5,"confidence":200,"riskLevel":"High"}}`
	bridge := NewAIBridge(gen, nil)

	prediction, err := bridge.PredictGrowth(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, prediction.MOY.PredictedScore)
	assert.Equal(t, 0.0, prediction.EOY.PredictedScore)
	assert.Equal(t, 100.0, prediction.EOY.Confidence)
}

func TestAIBridgePropagatesGeneratorErrors(t *testing.T) {
	gen := newFakeGenerator()
	gen.errs[OpRefinePlan] = appErrors.Clone(appErrors.ErrConfiguration, "")
	bridge := NewAIBridge(gen, nil)

	_, err := bridge.RefinePlan(context.Background(), "plan", "add tiers")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfiguration))
	assert.False(t, appErrors.Recoverable(err))
}
