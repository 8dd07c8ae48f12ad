package models

import "time"

// Subject represents one offered course for a batch. Credit hours drive
// how many weekly sessions the expander derives.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Credits     int       `db:"credits" json:"credits"`
	IsPractical bool      `db:"is_practical" json:"is_practical"`
	IsThesis    bool      `db:"is_thesis" json:"is_thesis"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
