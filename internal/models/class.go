package models

import "time"

// Class is a class period owned by one educator.
type Class struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Name      string     `db:"name" json:"name"`
	Subject   string     `db:"subject" json:"subject"`
	Roster    StringList `db:"roster" json:"roster"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// ClassInput creates or replaces a class. An empty or "temp_" prefixed ID
// creates a new record during bulk saves.
type ClassInput struct {
	ID      string   `json:"id"`
	Name    string   `json:"name" validate:"required,max=120"`
	Subject string   `json:"subject" validate:"omitempty,max=80"`
	Roster  []string `json:"roster" validate:"omitempty,dive,min=1,max=120"`
}

// ClassUpdate merges fields into an existing class.
type ClassUpdate struct {
	Name    *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Subject *string  `json:"subject" validate:"omitempty,max=80"`
	Roster  []string `json:"roster" validate:"omitempty,dive,min=1,max=120"`
}

// ScopeFilter narrows a collection read to one class. Empty means all
// records owned by the caller.
type ScopeFilter struct {
	ClassID string
}
