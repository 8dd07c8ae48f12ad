package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleConfigStatus represents lifecycle phases for a timetable configuration.
type ScheduleConfigStatus string

const (
	ScheduleConfigStatusDraft    ScheduleConfigStatus = "DRAFT"
	ScheduleConfigStatusActive   ScheduleConfigStatus = "ACTIVE"
	ScheduleConfigStatusArchived ScheduleConfigStatus = "ARCHIVED"
)

// ScheduleConfig defines the working calendar a generation run schedules into.
// WorkingDays is a JSON array of day names in display order, e.g.
// ["MONDAY","TUESDAY","WEDNESDAY","THURSDAY","FRIDAY"].
type ScheduleConfig struct {
	ID            string               `db:"id" json:"id"`
	Name          string               `db:"name" json:"name"`
	WorkingDays   types.JSONText       `db:"working_days" json:"working_days"`
	PeriodsPerDay int                  `db:"periods_per_day" json:"periods_per_day"`
	StartTime     string               `db:"start_time" json:"start_time"`
	PeriodMinutes int                  `db:"period_minutes" json:"period_minutes"`
	EndTime       string               `db:"end_time" json:"end_time"`
	Seed          int64                `db:"seed" json:"seed"`
	Status        ScheduleConfigStatus `db:"status" json:"status"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// Days decodes the working-day list.
func (c *ScheduleConfig) Days() ([]string, error) {
	if len(c.WorkingDays) == 0 {
		return nil, nil
	}

	var days []string
	if err := json.Unmarshal(c.WorkingDays, &days); err != nil {
		return nil, fmt.Errorf("decode working days: %w", err)
	}

	return days, nil
}
