package dto

import (
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
)

// GenerateTimetableRequest asks for a full generation run.
type GenerateTimetableRequest struct {
	ConfigID   string `json:"configId" validate:"required"`
	Regenerate bool   `json:"regenerate"`
	Async      bool   `json:"async"`
}

// GenerateTimetableResponse returns the run outcome.
type GenerateTimetableResponse struct {
	RunID          string                   `json:"runId"`
	ConfigID       string                   `json:"configId"`
	Seed           int64                    `json:"seed"`
	Status         string                   `json:"status"`
	Entries        []models.TimetableEntry  `json:"entries"`
	FailedSessions []models.FailedSession   `json:"failedSessions"`
	ConfigIssues   []engine.ConfigIssue     `json:"configIssues,omitempty"`
	Report         *models.ValidationReport `json:"report,omitempty"`
	Stats          engine.Stats             `json:"stats"`
}

// GenerateTimetableAccepted is the async variant's immediate reply.
type GenerateTimetableAccepted struct {
	JobID    string `json:"jobId"`
	ConfigID string `json:"configId"`
	Status   string `json:"status"`
}

// ValidateTimetableRequest re-checks entries against every constraint.
// When Entries is empty the stored timetable for the configuration is
// validated instead.
type ValidateTimetableRequest struct {
	ConfigID string                  `json:"configId" validate:"required"`
	Entries  []models.TimetableEntry `json:"entries"`
}

// MoveEntryRequest relocates one entry (or its practical block).
type MoveEntryRequest struct {
	NewDay    string `json:"newDay" validate:"required"`
	NewPeriod int    `json:"newPeriod" validate:"required,min=1"`
}

// MoveEntryResponse reports the move outcome. RejectedReason carries
// the violated constraint name when Success is false.
type MoveEntryResponse struct {
	Success        bool                    `json:"success"`
	RejectedReason string                  `json:"rejectedReason,omitempty"`
	Updated        []models.TimetableEntry `json:"updated,omitempty"`
}

// TimetableEntryQuery filters entry listings.
type TimetableEntryQuery struct {
	ConfigID string `form:"configId" json:"configId"`
	Section  string `form:"section" json:"section"`
	Teacher  string `form:"teacherId" json:"teacherId"`
	Day      string `form:"day" json:"day"`
}
