package models

import "time"

// LessonStatus tracks where a stored lesson is in its life.
type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "planned"
	LessonStatusDelivered LessonStatus = "delivered"
	LessonStatusRevised   LessonStatus = "revised"
)

// Lesson is a plan kept in the lesson bank.
type Lesson struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"userId"`
	ClassID     *string      `db:"class_id" json:"classId,omitempty"`
	Focus       string       `db:"focus" json:"focus"`
	Subject     string       `db:"subject" json:"subject"`
	Content     string       `db:"content" json:"content"`
	DatePlanned time.Time    `db:"date_planned" json:"datePlanned"`
	Status      LessonStatus `db:"status" json:"status"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// LessonInput saves a lesson manually.
type LessonInput struct {
	ClassID *string `json:"classId" validate:"omitempty,max=64"`
	Focus   string  `json:"focus" validate:"required,max=200"`
	Subject string  `json:"subject" validate:"omitempty,max=80"`
	Content string  `json:"content" validate:"required"`
}

// LessonUpdate merges fields into a stored lesson.
type LessonUpdate struct {
	Focus   *string       `json:"focus" validate:"omitempty,min=1,max=200"`
	Subject *string       `json:"subject" validate:"omitempty,max=80"`
	Content *string       `json:"content"`
	Status  *LessonStatus `json:"status" validate:"omitempty,oneof=planned delivered revised"`
}
