package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleTeacher       UserRole = "TEACHER"
	RoleAdmin         UserRole = "ADMIN"
	RoleDistrictAdmin UserRole = "DISTRICT_ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleTeacher, RoleAdmin, RoleDistrictAdmin:
		return true
	}
	return false
}

// User is an educator profile. It is created at first sign-in and never
// hard-deleted.
type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	AccessCodeHash string     `db:"access_code_hash" json:"-"`
	Name           string     `db:"name" json:"name"`
	Role           UserRole   `db:"role" json:"role"`
	Grade          string     `db:"grade" json:"grade"`
	Subjects       StringList `db:"subjects" json:"subjects"`
	CampusName     string     `db:"campus_name" json:"campusName"`
	Classes        []Class    `db:"-" json:"classes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name       *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Grade      *string  `json:"grade" validate:"omitempty,max=60"`
	Subjects   []string `json:"subjects" validate:"omitempty,dive,min=1,max=80"`
	CampusName *string  `json:"campusName" validate:"omitempty,max=120"`
}
