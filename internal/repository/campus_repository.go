package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

// AllCampuses disables the campus filter.
const AllCampuses = "All Campuses"

// CampusRepository exposes read-only aggregates across educators for the
// admin dashboard.
type CampusRepository struct {
	db *sqlx.DB
}

// NewCampusRepository instantiates the repository.
func NewCampusRepository(db *sqlx.DB) *CampusRepository {
	return &CampusRepository{db: db}
}

type teacherSummaryRow struct {
	models.TeacherSummary
	Subjects models.StringList `db:"subjects"`
}

// TeacherSummaries aggregates outcomes per teacher from their history and
// delivered interventions.
func (r *CampusRepository) TeacherSummaries(ctx context.Context, campus string) ([]models.TeacherSummary, error) {
	var query strings.Builder
	query.WriteString(`SELECT u.id, u.name, u.grade, u.subjects, u.campus_name,
        COALESCE((SELECT AVG(h.metric) FROM history h WHERE h.user_id = u.id AND h.type = $2), 0) AS avg_mastery,
        COALESCE((SELECT AVG(h.metric) FROM history h WHERE h.user_id = u.id AND h.type = $3), 0) AS planning_score,
        COALESCE((SELECT AVG(h.metric) FROM history h WHERE h.user_id = u.id AND h.type = $4), 0) AS fidelity_score,
        COALESCE((SELECT i.skill FROM interventions i WHERE i.user_id = u.id AND i.status = $5 ORDER BY i.delivered_date DESC LIMIT 1), '') AS last_intervention
        FROM users u WHERE u.role = $1`)
	args := []interface{}{models.RoleTeacher, models.HistoryAssessment, models.HistoryPlanning, models.HistoryAlignment, models.InterventionDelivered}
	args = appendCampus(&query, args, "u", campus)
	query.WriteString(" ORDER BY u.name ASC")

	var rows []teacherSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("query teacher summaries: %w", err)
	}
	summaries := make([]models.TeacherSummary, 0, len(rows))
	for _, row := range rows {
		summary := row.TeacherSummary
		summary.Subject = strings.Join(row.Subjects, ", ")
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RecentLessons returns the most recently planned lessons on the campus.
func (r *CampusRepository) RecentLessons(ctx context.Context, campus string, limit int) ([]models.Lesson, error) {
	var query strings.Builder
	query.WriteString(`SELECT l.id, l.user_id, l.class_id, l.focus, l.subject, l.content, l.date_planned, l.status, l.updated_at
        FROM lessons l JOIN users u ON u.id = l.user_id WHERE 1=1`)
	args := appendCampus(&query, nil, "u", campus)
	fmt.Fprintf(&query, " ORDER BY l.date_planned DESC LIMIT %d", clampLimit(limit))

	lessons := []models.Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query.String(), args...); err != nil {
		return nil, fmt.Errorf("query recent lessons: %w", err)
	}
	return lessons, nil
}

// BehaviorLogs collects intervention history and assessment behavior notes.
func (r *CampusRepository) BehaviorLogs(ctx context.Context, campus string, limit int) ([]models.BehaviorLog, error) {
	var query strings.Builder
	query.WriteString(`SELECT source, grade, detail, metric FROM (
        SELECT 'intervention' AS source, u.grade AS grade, h.label AS detail, h.metric AS metric, h.created_at AS created_at, u.campus_name AS campus_name
        FROM history h JOIN users u ON u.id = h.user_id WHERE h.type = $1
        UNION ALL
        SELECT 'assessment' AS source, u.grade AS grade, a.behavior_notes AS detail, a.average AS metric, a.created_at AS created_at, u.campus_name AS campus_name
        FROM assessments a JOIN users u ON u.id = a.user_id WHERE a.behavior_notes <> ''
        ) logs WHERE 1=1`)
	args := appendCampus(&query, []interface{}{models.HistoryIntervention}, "logs", campus)
	fmt.Fprintf(&query, " ORDER BY created_at DESC LIMIT %d", clampLimit(limit))

	logs := []models.BehaviorLog{}
	if err := r.db.SelectContext(ctx, &logs, query.String(), args...); err != nil {
		return nil, fmt.Errorf("query behavior logs: %w", err)
	}
	return logs, nil
}

func appendCampus(query *strings.Builder, args []interface{}, alias, campus string) []interface{} {
	campus = strings.TrimSpace(campus)
	if campus == "" || campus == AllCampuses {
		return args
	}
	args = append(args, campus)
	fmt.Fprintf(query, " AND %s.campus_name = $%d", alias, len(args))
	return args
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
