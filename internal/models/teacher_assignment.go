package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TeacherAssignment maps a teacher to a subject and the explicit list
// of section labels they cover for it. A teacher may cover a subset of
// a batch's sections.
type TeacherAssignment struct {
	ID        string         `db:"id" json:"id"`
	TeacherID string         `db:"teacher_id" json:"teacher_id"`
	SubjectID string         `db:"subject_id" json:"subject_id"`
	Sections  types.JSONText `db:"sections" json:"sections"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// SectionLabels decodes the covered section labels.
func (a *TeacherAssignment) SectionLabels() ([]string, error) {
	if len(a.Sections) == 0 {
		return nil, nil
	}

	var labels []string
	if err := json.Unmarshal(a.Sections, &labels); err != nil {
		return nil, fmt.Errorf("decode assignment sections: %w", err)
	}

	return labels, nil
}
