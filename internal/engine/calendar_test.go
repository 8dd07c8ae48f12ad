package engine

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func TestNewCalendar(t *testing.T) {
	cal, err := NewCalendar(testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}, cal.Days)
	assert.Equal(t, 2, cal.DayIndex("wednesday"))
	assert.Equal(t, -1, cal.DayIndex("SUNDAY"))

	assert.True(t, cal.ValidPeriod(1))
	assert.True(t, cal.ValidPeriod(6))
	assert.False(t, cal.ValidPeriod(0))
	assert.False(t, cal.ValidPeriod(7))

	assert.True(t, cal.FitsBlock(4, 3))
	assert.False(t, cal.FitsBlock(5, 3))
}

func TestCalendarPeriodTimes(t *testing.T) {
	cal, err := NewCalendar(testConfig())
	require.NoError(t, err)

	assert.Equal(t, "08:30", cal.PeriodStart(1))
	assert.Equal(t, "09:30", cal.PeriodEnd(1))
	assert.Equal(t, "13:30", cal.PeriodStart(6))
	assert.Equal(t, "14:30", cal.PeriodEnd(6))
}

func TestCalendarMinuteCarry(t *testing.T) {
	cfg := testConfig()
	cfg.StartTime = "08:45"
	cfg.PeriodMinutes = 45

	cal, err := NewCalendar(cfg)
	require.NoError(t, err)

	assert.Equal(t, "08:45", cal.PeriodStart(1))
	assert.Equal(t, "09:30", cal.PeriodEnd(1))
	assert.Equal(t, "10:15", cal.PeriodStart(3))
}

func TestCalendarRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.ScheduleConfig)
	}{
		{"no days", func(c *models.ScheduleConfig) { c.WorkingDays = types.JSONText(`[]`) }},
		{"bad days json", func(c *models.ScheduleConfig) { c.WorkingDays = types.JSONText(`{`) }},
		{"zero periods", func(c *models.ScheduleConfig) { c.PeriodsPerDay = 0 }},
		{"zero minutes", func(c *models.ScheduleConfig) { c.PeriodMinutes = 0 }},
		{"bad start time", func(c *models.ScheduleConfig) { c.StartTime = "25:00" }},
		{"no colon", func(c *models.ScheduleConfig) { c.StartTime = "0830" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := NewCalendar(cfg)
			assert.Error(t, err)
		})
	}
}
