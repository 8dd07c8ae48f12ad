package models

import "time"

// Batch is a cohort/year group containing one or more sections that
// share a subject plan.
type Batch struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	SemesterNumber int       `db:"semester_number" json:"semester_number"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsFinalYear reports whether the batch is in its final year, which
// reserves one weekday exclusively for thesis work.
func (b *Batch) IsFinalYear(semesterFloor int) bool {
	return b.SemesterNumber >= semesterFloor
}

// Section is a batch subdivision (e.g. "22SW-B") that receives its own
// timetable.
type Section struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	Label     string    `db:"label" json:"label"`
	Strength  int       `db:"strength" json:"strength"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
