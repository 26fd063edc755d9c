package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/scoremarker"
)

const defaultPopulation = "Standard mixed-ability classroom"

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func planReviewPrompt(in PlanReviewInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Act as a T-TESS expert and master instructional coach.

CONTEXT:
- Target Lesson: %s
- Curriculum: %s
- Grade Level: %s
- Student Population Needs: %s
`, in.Focus, orDefault(in.Curriculum, "Not specified"), orDefault(in.Grade, "Not specified"), orDefault(in.TierNotes, defaultPopulation))
	if in.Accommodations != "" {
		fmt.Fprintf(&b, "- SPED/504 Accommodations:\n%s\n", in.Accommodations)
	}
	if in.PlanText != "" {
		fmt.Fprintf(&b, "\nLESSON PLANS:\n%s\n", in.PlanText)
	}
	fmt.Fprintf(&b, `
TASK:
Analyze the provided week's worth of plans for the specific "%s" section.
Modify and rewrite the plan to achieve T-TESS "Distinguished" status.

MANDATORY ENHANCEMENTS:
1. DIFFERENTIATION MATRIX:
   - Provide specific scaffolds for "Struggling Learners" (Tier 3 focus).
   - Provide "Extension/Stretch" activities for "Advanced Learners".
2. TIER 2 & 3 PLANNING:
   - Define 10-15 minutes of "Small Group Purposeful Talk" (FSGPT) specifically for Tier 2 students.
   - Include 1-2 specific "PAX Kernels" adapted for behavior support in tiered intervention groups.
3. MISCONCEPTION MAPPING:
   - Identify the top 3 common student misconceptions for this topic (especially within %s).
   - Provide a "Corrective Action Script" for the teacher to use when these misconceptions occur.
4. FUNDAMENTAL 5 & PAX:
   - Ensure "Power Zone" and "Framing" are explicitly linked to checking for understanding (CFU).

REQUIRED OUTPUT STRUCTURE:
- [LESSON OVERVIEW]: Summary of objectives and Framing.
- [GAP ANALYSIS]: What was missing (e.g. lack of differentiation, no misconception planning).
- [MISCONCEPTION & SOLUTIONS]: Table showing (Misconception | Corrective Strategy).
- [DIFFERENTIATION PLAN]: Specific Tiers (Tier 1, Tier 2, Tier 3) and High-Achiever strategies.
- [FULL DISTINGUISHED PLAN]: The complete rewritten lesson incorporating all framework requirements.

Finish with one line rating the ORIGINAL plan in the form "%s: <0-100>".
`, in.Focus, orDefault(in.Curriculum, "the curriculum"), scoremarker.Planning)
	return b.String()
}

func executionPrompt(in ExecutionInput) string {
	var b strings.Builder
	if in.Transcript != "" {
		b.WriteString("Analyze this classroom lesson transcript.\n\nTRANSCRIPT:\n")
		b.WriteString(in.Transcript)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Analyze this classroom lesson recording (Audio/Video).\n\n")
	}
	if in.PlanText != "" {
		b.WriteString("PLANNED LESSON (compare delivery against it):\n")
		b.WriteString(in.PlanText)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, `Focus on:
1. T-TESS Distinguished criteria (Engagement, Questioning, Differentiation).
2. Fundamental 5: Did the teacher leave the Power Zone to address Tier 2/3 needs?
3. PAX Kernels: Effectiveness of behavior management.
4. Student Responses: Did the teacher catch misconceptions in real-time?

Provide a formative grade and 3 "High-Leverage Actions" for the next lesson.

Finish with these lines, each scored 0-100:
%s: <student discourse quality>
%s: <fidelity to the planned lesson>
%s: <use of instructional time>
`, scoremarker.Discourse, scoremarker.Alignment, scoremarker.Pacing)
	return b.String()
}

func coachingPrompt(in CoachingInput, average float64) string {
	values := make([]string, 0, len(in.Scores))
	for _, s := range in.Scores {
		if s.Name != "" {
			values = append(values, fmt.Sprintf("%s %g", s.Name, s.Score))
		} else {
			values = append(values, fmt.Sprintf("%g", s.Score))
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this student data for an educator.
- Scores: %s (Average: %.2f)
- Teacher Reflection: "%s"
`, strings.Join(values, ", "), average, in.Reflection)
	if in.BehaviorNotes != "" {
		fmt.Fprintf(&b, "- Behavior Notes: %s\n", in.BehaviorNotes)
	}
	if in.Accommodations != "" {
		fmt.Fprintf(&b, "- SPED/504 Accommodations:\n%s\n", in.Accommodations)
	}
	if in.Evidence != nil {
		b.WriteString("- Student work evidence is attached.\n")
	}
	b.WriteString(`
As an Instructional Coach:
1. DATA CLASSIFICATION: Group students into Tiers based on these scores (0-60 Tier 3, 61-80 Tier 2, 81+ Tier 1).
2. CAUSE ANALYSIS: Connect specific Fundamental 5 gaps (e.g. weak framing or lack of FSGPT) to the score distribution.
3. RE-TEACH PLAN: Provide a 15-minute re-teaching strategy for Tier 2/3 students that addresses likely misconceptions.
4. DIFFERENTIATION ADVICE: How should the teacher change the next lesson's plan for high and low students based on this specific data?
`)
	return b.String()
}

func refinePrompt(original, feedback string) string {
	return fmt.Sprintf(`Act as a master instructional coach revising a T-TESS lesson plan.

ORIGINAL PLAN:
%s

COACHING FEEDBACK TO APPLY:
%s

Rewrite the complete plan so every piece of feedback is addressed. Keep the
[LESSON OVERVIEW], [DIFFERENTIATION PLAN] and [FULL DISTINGUISHED PLAN]
sections, keep Fundamental 5 and PAX elements, and return only the revised plan.
`, original, feedback)
}

func pdScanPrompt(teachers string) string {
	return fmt.Sprintf(`Act as a district instructional leader reviewing campus teacher metrics.

TEACHER METRICS (JSON):
%s

Score each instructional dimension (Planning, Questioning, Differentiation, Fundamental 5, PAX Behavior Supports, Data Use)
from 0 to 100 campus-wide, mark its status as "strong", "developing" or "critical", name the single highest-leverage
professional development need with a rationale, and give a one paragraph insight.

Respond with JSON only:
{"heatMap":[{"dimension":"","score":0,"status":""}],"topPDNeed":{"area":"","rationale":""},"insight":""}
`, teachers)
}

func auditPrompt(campus, lessons string) string {
	return fmt.Sprintf(`Act as a curriculum fidelity auditor for %s.

RECENT LESSON PLANS (JSON):
%s

Compare the plans against the adopted curriculum scope and sequence. Give an overall fidelityScore from 0 to 100 and list
findings with the area, what was found, and the deviation as a percentage.

Respond with JSON only:
{"fidelityScore":0,"auditFindings":[{"area":"","finding":"","deviation":0}]}
`, campus, lessons)
}

func behaviorPrompt(logs string) string {
	return fmt.Sprintf(`Act as a PAX Good Behavior Game coach analysing campus behavior signals.

BEHAVIOR LOGS (JSON):
%s

Group recurring issues into clusters with the time block and grade where they occur, then recommend one PAX kernel
and how to implement it.

Respond with JSON only:
{"clusters":[{"issue":"","timeBlock":"","grade":""}],"paxSolution":{"kernel":"","implementation":""}}
`, logs)
}

func interventionPrompt(assessments, history string) string {
	return fmt.Sprintf(`Act as an RTI coordinator forming small intervention groups.

ASSESSMENTS (JSON, newest first):
%s

RECENT OUTCOME HISTORY (JSON):
%s

Group students who share a skill gap. Use Tier 3 for scores 0-60 and Tier 2 for 61-80; Tier 1 students need no group.
For each group write a 15-minute FSGPT lesson plan in markdown with a PAX kernel for behavior support.

Respond with JSON only:
[{"skill":"","studentNames":[""],"tier":2,"lessonPlan":""}]
`, assessments, history)
}

func predictionPrompt(assessments, mastery string) string {
	return fmt.Sprintf(`Act as an assessment data analyst forecasting student growth.

ASSESSMENT HISTORY (JSON, newest first):
%s

COACHING MASTERY HISTORY (JSON, newest first):
%s

Project the class average for the Middle of Year (MOY) and End of Year (EOY) windows. For each give predictedScore
(0-100), confidence (0-100), riskLevel ("Low", "Moderate" or "High"), reasoning, and one recommended intervention.

Respond with JSON only:
{"moy":{"predictedScore":0,"confidence":0,"riskLevel":"","reasoning":"","intervention":""},"eoy":{"predictedScore":0,"confidence":0,"riskLevel":"","reasoning":"","intervention":""}}
`, assessments, mastery)
}

// promptAssessment is the compact assessment shape sent to the model.
type promptAssessment struct {
	Title   string                `json:"title"`
	Type    models.AssessmentType `json:"type"`
	Subject string                `json:"subject,omitempty"`
	Average float64               `json:"average"`
	Scores  []models.StudentScore `json:"scores"`
	Notes   string                `json:"behaviorNotes,omitempty"`
	Date    string                `json:"date"`
}

type promptHistory struct {
	Type   models.HistoryType `json:"type"`
	Metric float64            `json:"metric"`
	Label  string             `json:"label"`
	Date   string             `json:"date"`
}

type promptLesson struct {
	Focus   string `json:"focus"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
	Date    string `json:"datePlanned"`
	Excerpt string `json:"excerpt"`
}

const lessonExcerptLimit = 1200

func toPromptAssessments(items []models.Assessment) []promptAssessment {
	out := make([]promptAssessment, 0, len(items))
	for _, a := range items {
		out = append(out, promptAssessment{
			Title:   a.Title,
			Type:    a.Type,
			Subject: a.Subject,
			Average: Round2(a.Average),
			Scores:  a.Scores,
			Notes:   a.BehaviorNotes,
			Date:    a.CreatedAt.Format("2006-01-02"),
		})
	}
	return out
}

func toPromptHistory(items []models.HistoryEntry) []promptHistory {
	out := make([]promptHistory, 0, len(items))
	for _, h := range items {
		out = append(out, promptHistory{Type: h.Type, Metric: Round2(h.Metric), Label: h.Label, Date: h.CreatedAt.Format("2006-01-02")})
	}
	return out
}

func toPromptLessons(items []models.Lesson) []promptLesson {
	out := make([]promptLesson, 0, len(items))
	for _, l := range items {
		excerpt := l.Content
		if runes := []rune(excerpt); len(runes) > lessonExcerptLimit {
			excerpt = string(runes[:lessonExcerptLimit])
		}
		out = append(out, promptLesson{Focus: l.Focus, Subject: l.Subject, Status: string(l.Status), Date: l.DatePlanned.Format("2006-01-02"), Excerpt: excerpt})
	}
	return out
}
