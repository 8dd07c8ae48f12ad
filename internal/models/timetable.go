package models

import "time"

// TimetableEntry is one committed (day, period, room) assignment for a
// section. A practical block is stored as three entries on consecutive
// periods sharing the same BlockID, room, and teacher.
type TimetableEntry struct {
	ID          string    `db:"id" json:"id"`
	RunID       string    `db:"run_id" json:"run_id"`
	ConfigID    string    `db:"config_id" json:"config_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Section     string    `db:"section" json:"section"`
	Day         string    `db:"day" json:"day"`
	Period      int       `db:"period" json:"period"`
	IsPractical bool      `db:"is_practical" json:"is_practical"`
	BlockID     *string   `db:"block_id" json:"block_id,omitempty"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntryFilter captures filtering options for listing entries.
type TimetableEntryFilter struct {
	ConfigID string
	RunID    string
	Section  string
	Teacher  string
	Day      string
}
