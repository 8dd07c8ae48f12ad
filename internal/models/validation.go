package models

import "time"

// ConstraintStatus is the outcome of one constraint check.
type ConstraintStatus string

const (
	ConstraintStatusPass ConstraintStatus = "PASS"
	ConstraintStatusFail ConstraintStatus = "FAIL"
	// ConstraintStatusWarning marks soft-constraint shortfalls, which
	// never fail a timetable.
	ConstraintStatusWarning ConstraintStatus = "WARNING"
)

// ConstraintViolation pins a constraint failure to the concrete
// offending entries.
type ConstraintViolation struct {
	Description string   `json:"description"`
	TeacherID   string   `json:"teacher_id,omitempty"`
	RoomID      string   `json:"room_id,omitempty"`
	SubjectID   string   `json:"subject_id,omitempty"`
	Section     string   `json:"section,omitempty"`
	Day         string   `json:"day,omitempty"`
	Period      int      `json:"period,omitempty"`
	EntryIDs    []string `json:"entry_ids,omitempty"`
}

// ConstraintReport is the per-constraint slice of a validation report.
type ConstraintReport struct {
	Name           string                `json:"name"`
	Status         ConstraintStatus      `json:"status"`
	Violations     []ConstraintViolation `json:"violations"`
	CompliantCount int                   `json:"compliant_count"`
}

// ValidationReport aggregates every constraint check over one set of
// timetable entries. It is the single source of truth for whether a
// timetable is correct, regardless of how the entries were produced.
type ValidationReport struct {
	Status      ConstraintStatus   `json:"status"`
	Constraints []ConstraintReport `json:"constraints"`
	CheckedAt   time.Time          `json:"checked_at"`
}
