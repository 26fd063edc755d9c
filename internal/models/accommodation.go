package models

import "time"

// Accommodation records SPED/504 supports for one student.
type Accommodation struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	ClassID       *string   `db:"class_id" json:"classId,omitempty"`
	StudentName   string    `db:"student_name" json:"studentName"`
	Needs         string    `db:"needs" json:"needs"`
	Accommodation string    `db:"accommodation" json:"accommodation"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// AccommodationInput is the payload for saving an accommodation.
type AccommodationInput struct {
	ClassID       *string `json:"classId" validate:"omitempty,max=64"`
	StudentName   string  `json:"studentName" validate:"required,max=120"`
	Needs         string  `json:"needs" validate:"omitempty,max=2000"`
	Accommodation string  `json:"accommodation" validate:"required,max=2000"`
}
