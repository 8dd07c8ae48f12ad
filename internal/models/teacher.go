package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Teacher represents an instructor record.
type Teacher struct {
	ID                string         `db:"id" json:"id"`
	FullName          string         `db:"full_name" json:"full_name"`
	Email             string         `db:"email" json:"email"`
	MaxSessionsPerDay int            `db:"max_sessions_per_day" json:"max_sessions_per_day"`
	UnavailableSlots  types.JSONText `db:"unavailable_slots" json:"unavailable_slots"`
	Active            bool           `db:"active" json:"active"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// UnavailableSlot marks one (day, period) pair a teacher cannot take.
type UnavailableSlot struct {
	Day    string `json:"day"`
	Period int    `json:"period"`
}

// Unavailability decodes the teacher's unavailable (day, period) pairs.
func (t *Teacher) Unavailability() ([]UnavailableSlot, error) {
	if len(t.UnavailableSlots) == 0 {
		return nil, nil
	}

	var slots []UnavailableSlot
	if err := json.Unmarshal(t.UnavailableSlots, &slots); err != nil {
		return nil, fmt.Errorf("decode unavailable slots: %w", err)
	}

	return slots, nil
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search string
	Active *bool
}
