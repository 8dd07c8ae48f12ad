package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/campusops/timetable-api/internal/models"
)

// Calendar is the decoded working grid of a configuration: an ordered
// day list crossed with 1-based contiguous periods.
type Calendar struct {
	Days          []string
	PeriodsPerDay int
	StartHour     int
	StartMinute   int
	PeriodMinutes int
}

// NewCalendar decodes a schedule configuration into a Calendar.
func NewCalendar(cfg models.ScheduleConfig) (*Calendar, error) {
	days, err := cfg.Days()
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("configuration has no working days")
	}
	if cfg.PeriodsPerDay <= 0 {
		return nil, fmt.Errorf("configuration has no periods")
	}
	if cfg.PeriodMinutes <= 0 {
		return nil, fmt.Errorf("configuration has no period duration")
	}

	hour, minute, err := parseClock(cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}

	normalized := make([]string, len(days))
	for i, day := range days {
		normalized[i] = strings.ToUpper(strings.TrimSpace(day))
	}

	return &Calendar{
		Days:          normalized,
		PeriodsPerDay: cfg.PeriodsPerDay,
		StartHour:     hour,
		StartMinute:   minute,
		PeriodMinutes: cfg.PeriodMinutes,
	}, nil
}

// DayIndex returns the position of a day name, or -1 if the day is not
// a working day.
func (c *Calendar) DayIndex(day string) int {
	needle := strings.ToUpper(strings.TrimSpace(day))
	for i, d := range c.Days {
		if d == needle {
			return i
		}
	}
	return -1
}

// ValidPeriod reports whether a 1-based period is inside the grid.
func (c *Calendar) ValidPeriod(period int) bool {
	return period >= 1 && period <= c.PeriodsPerDay
}

// FitsBlock reports whether a block of the given length starting at
// period stays inside the working day.
func (c *Calendar) FitsBlock(period, length int) bool {
	return period >= 1 && period+length-1 <= c.PeriodsPerDay
}

// PeriodStart returns the wall-clock start of a 1-based period as
// "HH:MM". Minute overflow carries into hours; hours clamp at 23:59 so
// misconfigured grids degrade instead of wrapping past midnight.
func (c *Calendar) PeriodStart(period int) string {
	return c.clockAt((period - 1) * c.PeriodMinutes)
}

// PeriodEnd returns the wall-clock end of a 1-based period as "HH:MM".
func (c *Calendar) PeriodEnd(period int) string {
	return c.clockAt(period * c.PeriodMinutes)
}

func (c *Calendar) clockAt(offsetMinutes int) string {
	minute := c.StartMinute + offsetMinutes
	hour := c.StartHour + minute/60
	minute %= 60
	if hour > 23 {
		hour = 23
		minute = 59
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func parseClock(raw string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}
