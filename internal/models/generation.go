package models

import "time"

// GenerationRunStatus represents lifecycle phases of a generation run.
type GenerationRunStatus string

const (
	GenerationRunStatusRunning   GenerationRunStatus = "RUNNING"
	GenerationRunStatusCompleted GenerationRunStatus = "COMPLETED"
	GenerationRunStatusPartial   GenerationRunStatus = "PARTIAL"
	GenerationRunStatusFailed    GenerationRunStatus = "FAILED"
)

// GenerationRun records one execution of the placement pipeline for a
// configuration. Entries reference the run that produced them, so
// output from different runs never mixes.
type GenerationRun struct {
	ID           string              `db:"id" json:"id"`
	ConfigID     string              `db:"config_id" json:"config_id"`
	Seed         int64               `db:"seed" json:"seed"`
	Status       GenerationRunStatus `db:"status" json:"status"`
	PlacedCount  int                 `db:"placed_count" json:"placed_count"`
	FailedCount  int                 `db:"failed_count" json:"failed_count"`
	ElapsedMs    int64               `db:"elapsed_ms" json:"elapsed_ms"`
	ErrorMessage *string             `db:"error_message" json:"error_message,omitempty"`
	StartedAt    time.Time           `db:"started_at" json:"started_at"`
	FinishedAt   *time.Time          `db:"finished_at" json:"finished_at,omitempty"`
}

// FailedSession describes one demand unit the engine could not place,
// with the hard constraint the failure traces back to.
type FailedSession struct {
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	Section     string `json:"section"`
	TeacherID   string `json:"teacher_id"`
	Occurrence  int    `json:"occurrence"`
	IsPractical bool   `json:"is_practical"`
	Reason      string `json:"reason"`
	Constraint  string `json:"constraint"`
}
