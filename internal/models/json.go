package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a list of strings persisted as a JSON array.
type StringList []string

// Value marshals the list, writing an empty array for nil.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan accepts the JSON text drivers return for JSONB or TEXT columns.
func (l *StringList) Scan(value interface{}) error {
	var out []string
	if err := scanJSON(value, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// StudentScores is the per-student score list of an assessment.
type StudentScores []StudentScore

// Value marshals the scores, writing an empty array for nil.
func (s StudentScores) Value() (driver.Value, error) {
	if s == nil {
		s = StudentScores{}
	}
	data, err := json.Marshal([]StudentScore(s))
	if err != nil {
		return nil, fmt.Errorf("marshal student scores: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals scores stored as JSON.
func (s *StudentScores) Scan(value interface{}) error {
	var out []StudentScore
	if err := scanJSON(value, &out); err != nil {
		return fmt.Errorf("scan student scores: %w", err)
	}
	if out == nil {
		out = []StudentScore{}
	}
	*s = out
	return nil
}

func scanJSON(value interface{}, dest interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
