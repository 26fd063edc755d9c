package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

type campusRepository interface {
	TeacherSummaries(ctx context.Context, campus string) ([]models.TeacherSummary, error)
	RecentLessons(ctx context.Context, campus string, limit int) ([]models.Lesson, error)
	BehaviorLogs(ctx context.Context, campus string, limit int) ([]models.BehaviorLog, error)
}

// AllCampuses disables the campus filter.
const AllCampuses = "All Campuses"

const (
	auditLessonLimit = 10
	behaviorLogLimit = 50
)

// CampusService aggregates teacher outcomes for administrators.
type CampusService struct {
	repo   campusRepository
	cache  insightsCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCampusService constructs a CampusService. cache may be nil.
func NewCampusService(repo campusRepository, cache insightsCache, ttl time.Duration, logger *zap.Logger) *CampusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampusService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func normaliseCampus(campus string) string {
	campus = strings.TrimSpace(campus)
	if campus == "" {
		return AllCampuses
	}
	return campus
}

// Overview returns teacher summaries and campus averages.
func (s *CampusService) Overview(ctx context.Context, campus string) (*models.CampusOverview, error) {
	campus = normaliseCampus(campus)
	key := strings.Replace(campusKeyPattern, "*", campus, 1)
	if s.cache != nil {
		var cached models.CampusOverview
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	teachers, err := s.Teachers(ctx, campus)
	if err != nil {
		return nil, err
	}
	overview := &models.CampusOverview{
		Campus:      campus,
		Teachers:    teachers,
		CampusAvg:   Average(teachers, func(t models.TeacherSummary) float64 { return t.AvgMastery }),
		PlanningAvg: Average(teachers, func(t models.TeacherSummary) float64 { return t.PlanningScore }),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, overview, s.ttl); err != nil {
			s.logger.Warn("failed to cache campus overview", zap.String("campus", campus), zap.Error(err))
		}
	}
	return overview, nil
}

// Teachers returns teacher summaries for a campus.
func (s *CampusService) Teachers(ctx context.Context, campus string) ([]models.TeacherSummary, error) {
	teachers, err := s.repo.TeacherSummaries(ctx, normaliseCampus(campus))
	if err != nil {
		return nil, storeError(err, "teacher summaries", "load")
	}
	return teachers, nil
}

// RecentLessons returns the lessons audited for curriculum fidelity.
func (s *CampusService) RecentLessons(ctx context.Context, campus string) ([]models.Lesson, error) {
	lessons, err := s.repo.RecentLessons(ctx, normaliseCampus(campus), auditLessonLimit)
	if err != nil {
		return nil, storeError(err, "lessons", "load")
	}
	return lessons, nil
}

// BehaviorLogs returns the signals used for behavior clustering.
func (s *CampusService) BehaviorLogs(ctx context.Context, campus string) ([]models.BehaviorLog, error) {
	logs, err := s.repo.BehaviorLogs(ctx, normaliseCampus(campus), behaviorLogLimit)
	if err != nil {
		return nil, storeError(err, "behavior logs", "load")
	}
	return logs, nil
}
