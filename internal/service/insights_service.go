package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type insightsHistoryReader interface {
	List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error)
}

type insightsAssessmentReader interface {
	List(ctx context.Context, userID string, filter models.ScopeFilter) ([]models.Assessment, error)
}

type insightsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// InsightsService composes the growth dashboard from history and assessments.
type InsightsService struct {
	history     insightsHistoryReader
	assessments insightsAssessmentReader
	cache       insightsCache
	ttl         time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewInsightsService constructs an InsightsService. cache may be nil.
func NewInsightsService(history insightsHistoryReader, assessments insightsAssessmentReader, cache insightsCache, ttl time.Duration, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{
		history:     history,
		assessments: assessments,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Insights returns the cached dashboard or computes it from the records.
func (s *InsightsService) Insights(ctx context.Context, userID string) (*models.Insights, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	key := insightsKeyPrefix + userID
	if s.cache != nil {
		var cached models.Insights
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	entries, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, storeError(err, "history", "list")
	}
	assessments, err := s.assessments.List(ctx, userID, models.ScopeFilter{})
	if err != nil {
		return nil, storeError(err, "assessments", "list")
	}

	insights := Compose(entries, assessments)
	insights.GeneratedAt = s.now()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, insights, s.ttl); err != nil {
			s.logger.Warn("failed to cache insights", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return insights, nil
}

// Compose derives the dashboard from newest-first history and assessments.
func Compose(entries []models.HistoryEntry, assessments []models.Assessment) *models.Insights {
	byType := groupByType(entries)
	metric := func(e models.HistoryEntry) float64 { return e.Metric }

	coaching := byType[models.HistoryCoaching]
	execution := byType[models.HistoryExecution]
	alignment := byType[models.HistoryAlignment]
	pacing := byType[models.HistoryPacing]

	insights := &models.Insights{
		Mastery:          Latest(coaching),
		MasteryTrend:     Trend(coaching),
		Discourse:        Latest(execution),
		DiscourseTrend:   Trend(execution),
		Alignment:        Average(alignment, metric),
		AlignmentTrend:   Trend(alignment),
		Pacing:           Average(pacing, metric),
		PacingTrend:      Trend(pacing),
		TotalSessions:    len(entries),
		TotalAssessments: len(assessments),
		Series:           make(map[models.HistoryType][]models.SeriesPoint, len(byType)),
	}

	if len(assessments) > 0 {
		latest := assessments[0]
		insights.AssessmentAvg = latest.Average
		if len(assessments) > 1 {
			insights.AssessmentTrend = latest.Average - assessments[1].Average
		}
		insights.Tiers = Tiers(latest.Scores)
		students := float64(len(latest.Scores))
		insights.Readiness = Gauge(float64(insights.Tiers.Tier1), students)
	}

	for kind, list := range byType {
		points := make([]models.SeriesPoint, 0, len(list))
		for i := len(list) - 1; i >= 0; i-- {
			points = append(points, models.SeriesPoint{Date: list[i].CreatedAt, Metric: list[i].Metric, Label: list[i].Label})
		}
		insights.Series[kind] = points
	}
	return insights
}

func groupByType(entries []models.HistoryEntry) map[models.HistoryType][]models.HistoryEntry {
	grouped := make(map[models.HistoryType][]models.HistoryEntry)
	for _, entry := range entries {
		grouped[entry.Type] = append(grouped[entry.Type], entry)
	}
	return grouped
}
