package models

import "time"

// InterventionStatus moves forward only.
type InterventionStatus string

const (
	InterventionSuggested InterventionStatus = "suggested"
	InterventionScheduled InterventionStatus = "scheduled"
	InterventionDelivered InterventionStatus = "delivered"
)

var interventionRank = map[InterventionStatus]int{
	InterventionSuggested: 0,
	InterventionScheduled: 1,
	InterventionDelivered: 2,
}

// CanTransition reports whether moving from s to next goes strictly forward.
func (s InterventionStatus) CanTransition(next InterventionStatus) bool {
	from, ok := interventionRank[s]
	if !ok {
		return false
	}
	to, ok := interventionRank[next]
	if !ok {
		return false
	}
	return to > from
}

// InterventionGroup is a tiered small group targeting one skill.
type InterventionGroup struct {
	ID            string             `db:"id" json:"id"`
	UserID        string             `db:"user_id" json:"userId"`
	ClassID       *string            `db:"class_id" json:"classId,omitempty"`
	Skill         string             `db:"skill" json:"skill"`
	Tier          int                `db:"tier" json:"tier"`
	Students      StringList         `db:"students" json:"students"`
	LessonPlan    string             `db:"lesson_plan" json:"lessonPlan"`
	Status        InterventionStatus `db:"status" json:"status"`
	ScheduledDate *time.Time         `db:"scheduled_date" json:"scheduledDate,omitempty"`
	DeliveredDate *time.Time         `db:"delivered_date" json:"deliveredDate,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
}

// InterventionInput saves a group manually.
type InterventionInput struct {
	ClassID    *string  `json:"classId" validate:"omitempty,max=64"`
	Skill      string   `json:"skill" validate:"required,max=200"`
	Tier       int      `json:"tier" validate:"required,oneof=2 3"`
	Students   []string `json:"students" validate:"omitempty,dive,min=1,max=120"`
	LessonPlan string   `json:"lessonPlan"`
}

// InterventionUpdate edits a group or advances its status.
type InterventionUpdate struct {
	Skill         *string             `json:"skill" validate:"omitempty,min=1,max=200"`
	Students      []string            `json:"students" validate:"omitempty,dive,min=1,max=120"`
	LessonPlan    *string             `json:"lessonPlan"`
	Status        *InterventionStatus `json:"status" validate:"omitempty,oneof=suggested scheduled delivered"`
	ScheduledDate *time.Time          `json:"scheduledDate"`
}
