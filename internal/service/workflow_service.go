package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/edupro-navigator/internal/dto"
	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/media"
)

type mediaDecoder interface {
	Decode(encoded, mimeType string) (*media.Upload, error)
}

// WorkflowDeps groups the collaborators of the AI workflows.
type WorkflowDeps struct {
	Bridge         *AIBridge
	Media          mediaDecoder
	Views          *ViewRegistry
	Lessons        *LessonService
	Assessments    *AssessmentService
	Accommodations *AccommodationService
	Interventions  *InterventionService
	History        *HistoryService
	Campus         *CampusService
}

// WorkflowService runs each page's AI action through its view controller
// and persists the outcome.
type WorkflowService struct {
	deps      WorkflowDeps
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkflowService constructs a WorkflowService.
func NewWorkflowService(deps WorkflowDeps, validate *validator.Validate, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WorkflowService{deps: deps, validator: validate, logger: logger}
}

// ReviewPlan reviews a lesson plan and stores the rewritten plan. A planning
// history row is written only when the response carried a score.
func (s *WorkflowService) ReviewPlan(ctx context.Context, userID string, req dto.PlannerReviewRequest) (*models.PlanningReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "planner")
	}
	upload, err := s.decode(req.Media)
	if err != nil {
		return nil, err
	}

	result, err := s.deps.Views.Submit(ctx, userID, models.PagePlanner, func(ctx context.Context) (interface{}, error) {
		review, err := s.deps.Bridge.ReviewLessonPlan(ctx, PlanReviewInput{
			Media:          upload,
			PlanText:       req.PlanText,
			Focus:          req.Focus,
			Curriculum:     req.Curriculum,
			TierNotes:      req.TierNotes,
			Accommodations: s.deps.Accommodations.Context(ctx, userID, req.ClassID),
			Grade:          req.Grade,
		})
		if err != nil {
			return nil, err
		}

		lesson := &models.Lesson{
			UserID:  userID,
			ClassID: optionalClassID(&req.ClassID),
			Focus:   req.Focus,
			Subject: req.Curriculum,
			Content: review.Markdown,
			Status:  models.LessonStatusPlanned,
		}
		var entry *models.HistoryEntry
		if review.Score != nil {
			entry = &models.HistoryEntry{Type: models.HistoryPlanning, Metric: *review.Score, Label: "Plan Review: " + req.Focus}
		}
		if err := s.deps.Lessons.Record(ctx, lesson, entry); err != nil {
			return nil, err
		}
		review.LessonID = lesson.ID
		return review, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.PlanningReview), nil
}

// ReviewExecution reviews a delivered lesson. Every score found writes its
// own history row and a linked lesson is marked delivered.
func (s *WorkflowService) ReviewExecution(ctx context.Context, userID string, req dto.AnalyzerReviewRequest) (*models.ExecutionReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "analyzer")
	}
	upload, err := s.decode(req.Media)
	if err != nil {
		return nil, err
	}
	var lesson *models.Lesson
	if req.LessonID != "" {
		if lesson, err = s.deps.Lessons.Get(ctx, userID, req.LessonID); err != nil {
			return nil, err
		}
	}

	result, err := s.deps.Views.Submit(ctx, userID, models.PageAnalyzer, func(ctx context.Context) (interface{}, error) {
		in := ExecutionInput{Media: upload, Transcript: req.Transcript}
		label := "Recorded Lesson"
		var lessonID *string
		if lesson != nil {
			in.PlanText = lesson.Content
			label = lesson.Focus
			lessonID = &lesson.ID
		}
		review, err := s.deps.Bridge.ReviewExecution(ctx, in)
		if err != nil {
			return nil, err
		}

		var entries []*models.HistoryEntry
		add := func(kind models.HistoryType, score *float64, prefix string) {
			if score != nil {
				entries = append(entries, &models.HistoryEntry{Type: kind, Metric: *score, Label: prefix + label, LessonID: lessonID})
			}
		}
		add(models.HistoryExecution, review.DiscourseScore, "Discourse: ")
		add(models.HistoryAlignment, review.AlignmentScore, "Plan Alignment: ")
		add(models.HistoryPacing, review.PacingScore, "Pacing: ")
		if err := s.deps.History.Append(ctx, userID, entries...); err != nil {
			return nil, err
		}

		if lesson != nil {
			review.LessonID = lesson.ID
			if _, err := s.deps.Lessons.MarkDelivered(ctx, userID, lesson.ID); err != nil {
				s.logger.Warn("failed to mark lesson delivered", zap.String("lesson_id", lesson.ID), zap.Error(err))
			}
		}
		return review, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.ExecutionReview), nil
}

// Coach produces coaching advice and records the class average as mastery.
func (s *WorkflowService) Coach(ctx context.Context, userID string, req dto.CoachingRequest) (*models.CoachingAdvice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "coaching")
	}
	evidence, err := s.decode(req.Evidence)
	if err != nil {
		return nil, err
	}
	scores := make([]models.StudentScore, 0, len(req.Scores))
	for _, score := range req.Scores {
		scores = append(scores, models.StudentScore{Name: score.Name, Score: ClampScore(score.Score)})
	}

	result, err := s.deps.Views.Submit(ctx, userID, models.PageCoaching, func(ctx context.Context) (interface{}, error) {
		advice, err := s.deps.Bridge.Coach(ctx, CoachingInput{
			Scores:         scores,
			Reflection:     req.Reflection,
			BehaviorNotes:  req.BehaviorNotes,
			Evidence:       evidence,
			Accommodations: s.deps.Accommodations.Context(ctx, userID, req.ClassID),
		})
		if err != nil {
			return nil, err
		}
		entry := &models.HistoryEntry{
			Type:   models.HistoryCoaching,
			Metric: advice.ClassAverage,
			Label:  fmt.Sprintf("Coaching Session: %d students", len(scores)),
		}
		if err := s.deps.History.Append(ctx, userID, entry); err != nil {
			return nil, err
		}
		return advice, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.CoachingAdvice), nil
}

// Refine rewrites a stored lesson from feedback and marks it revised.
func (s *WorkflowService) Refine(ctx context.Context, userID, lessonID string, req dto.RefineRequest) (*models.RefinedPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "refine")
	}
	lesson, err := s.deps.Lessons.Get(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	result, err := s.deps.Views.Submit(ctx, userID, models.PageRefine, func(ctx context.Context) (interface{}, error) {
		revised, err := s.deps.Bridge.RefinePlan(ctx, lesson.Content, req.Feedback)
		if err != nil {
			return nil, err
		}
		updated, err := s.deps.Lessons.Revise(ctx, userID, lesson.ID, revised.Markdown)
		if err != nil {
			return nil, err
		}
		return &models.RefinedPlan{Narrative: revised, Lesson: *updated}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.RefinedPlan), nil
}

// SuggestInterventions asks for tiered groups and saves them as suggested.
func (s *WorkflowService) SuggestInterventions(ctx context.Context, userID string, req dto.SuggestInterventionsRequest) ([]models.InterventionGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "intervention suggestion")
	}
	result, err := s.deps.Views.Submit(ctx, userID, models.PageInterventions, func(ctx context.Context) (interface{}, error) {
		assessments, err := s.deps.Assessments.List(ctx, userID, req.ClassID)
		if err != nil {
			return nil, err
		}
		history, err := s.deps.History.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		suggestions, err := s.deps.Bridge.SuggestInterventions(ctx, assessments, history)
		if err != nil {
			return nil, err
		}
		return s.deps.Interventions.SaveSuggestions(ctx, userID, req.ClassID, suggestions)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.InterventionGroup), nil
}

// PredictGrowth projects MOY and EOY outcomes from assessments and mastery.
func (s *WorkflowService) PredictGrowth(ctx context.Context, userID string, req dto.PredictGrowthRequest) (*models.GrowthPrediction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "prediction")
	}
	result, err := s.deps.Views.Submit(ctx, userID, models.PageInsights, func(ctx context.Context) (interface{}, error) {
		assessments, err := s.deps.Assessments.List(ctx, userID, req.ClassID)
		if err != nil {
			return nil, err
		}
		mastery, err := s.deps.History.List(ctx, userID, models.HistoryCoaching)
		if err != nil {
			return nil, err
		}
		return s.deps.Bridge.PredictGrowth(ctx, assessments, mastery)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.GrowthPrediction), nil
}

// StrategicScan runs the three campus scans concurrently. A scan whose
// response cannot be parsed is left nil and named in Unavailable; any other
// failure fails the whole scan.
func (s *WorkflowService) StrategicScan(ctx context.Context, userID string, req dto.StrategicScanRequest) (*models.StrategicScan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "strategic scan")
	}
	campus := normaliseCampus(req.Campus)

	result, err := s.deps.Views.Submit(ctx, userID, models.PageAdmin, func(ctx context.Context) (interface{}, error) {
		scan := &models.StrategicScan{Campus: campus}
		var pdMissing, auditMissing, behaviorMissing bool

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			teachers, err := s.deps.Campus.Teachers(gctx, campus)
			if err != nil {
				return err
			}
			scan.PD, err = s.deps.Bridge.ScanPDNeeds(gctx, teachers)
			pdMissing, err = placeholder(err)
			return err
		})
		g.Go(func() error {
			lessons, err := s.deps.Campus.RecentLessons(gctx, campus)
			if err != nil {
				return err
			}
			scan.Audit, err = s.deps.Bridge.AuditCurriculum(gctx, campus, lessons)
			auditMissing, err = placeholder(err)
			return err
		})
		g.Go(func() error {
			logs, err := s.deps.Campus.BehaviorLogs(gctx, campus)
			if err != nil {
				return err
			}
			scan.Behavior, err = s.deps.Bridge.DetectBehaviorClusters(gctx, logs)
			behaviorMissing, err = placeholder(err)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if pdMissing {
			scan.Unavailable = append(scan.Unavailable, OpPDScan)
		}
		if auditMissing {
			scan.Unavailable = append(scan.Unavailable, OpCurriculumAudit)
		}
		if behaviorMissing {
			scan.Unavailable = append(scan.Unavailable, OpBehaviorCluster)
		}
		return scan, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.StrategicScan), nil
}

// placeholder swallows a malformed response, reporting it as missing.
func placeholder(err error) (bool, error) {
	if errors.Is(err, appErrors.ErrMalformedAIResponse) {
		return true, nil
	}
	return false, err
}

func (s *WorkflowService) decode(input *dto.MediaInput) (*media.Upload, error) {
	if input == nil || input.Data == "" {
		return nil, nil
	}
	return s.deps.Media.Decode(input.Data, input.MIMEType)
}
