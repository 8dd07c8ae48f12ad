package engine

import (
	"context"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func testConfig() models.ScheduleConfig {
	return models.ScheduleConfig{
		ID:            "cfg-1",
		Name:          "Fall 2025",
		WorkingDays:   types.JSONText(`["MONDAY","TUESDAY","WEDNESDAY","THURSDAY","FRIDAY"]`),
		PeriodsPerDay: 6,
		StartTime:     "08:30",
		PeriodMinutes: 60,
		EndTime:       "14:30",
		Seed:          42,
		Status:        models.ScheduleConfigStatusActive,
	}
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Config: testConfig(),
		Teachers: []models.Teacher{
			{ID: "t-1", FullName: "A. Memon", MaxSessionsPerDay: 6, UnavailableSlots: types.JSONText(`[]`), Active: true},
			{ID: "t-2", FullName: "B. Shaikh", MaxSessionsPerDay: 6, UnavailableSlots: types.JSONText(`[]`), Active: true},
			{ID: "t-3", FullName: "C. Junejo", MaxSessionsPerDay: 6, UnavailableSlots: types.JSONText(`[]`), Active: true},
		},
		Rooms: []models.Room{
			{ID: "r-101", Name: "Room 101", Type: models.RoomTypeRegular, Building: "Main Block", Active: true},
			{ID: "r-102", Name: "Room 102", Type: models.RoomTypeRegular, Building: "Main Block", Active: true},
			{ID: "lab-1", Name: "Lab 1", Type: models.RoomTypeLab, Building: "Lab Block", Active: true},
			{ID: "lab-2", Name: "Lab 2", Type: models.RoomTypeLab, Building: "Lab Block", Active: true},
		},
		Batches: []models.Batch{
			{ID: "b-24", Name: "24SW", SemesterNumber: 4},
			{ID: "b-21", Name: "21SW", SemesterNumber: 8},
		},
		Sections: []models.Section{
			{ID: "sec-1", BatchID: "b-24", Label: "24SW-A", Strength: 50},
			{ID: "sec-2", BatchID: "b-24", Label: "24SW-B", Strength: 48},
			{ID: "sec-3", BatchID: "b-21", Label: "21SW-A", Strength: 40},
		},
		Subjects: []models.Subject{
			{ID: "sub-dbs", BatchID: "b-24", Code: "DBS", Name: "Database Systems", Credits: 3},
			{ID: "sub-dsap", BatchID: "b-24", Code: "DSAP", Name: "Data Structures Practical", Credits: 1, IsPractical: true},
			{ID: "sub-se", BatchID: "b-21", Code: "SE", Name: "Software Economics", Credits: 2},
			{ID: "sub-ths", BatchID: "b-21", Code: "THS", Name: "Thesis", Credits: 1, IsThesis: true},
		},
		Assignments: []models.TeacherAssignment{
			{ID: "a-1", TeacherID: "t-1", SubjectID: "sub-dbs", Sections: types.JSONText(`["24SW-A","24SW-B"]`)},
			{ID: "a-2", TeacherID: "t-2", SubjectID: "sub-dsap", Sections: types.JSONText(`["24SW-A","24SW-B"]`)},
			{ID: "a-3", TeacherID: "t-3", SubjectID: "sub-se", Sections: types.JSONText(`["21SW-A"]`)},
			{ID: "a-4", TeacherID: "t-3", SubjectID: "sub-ths", Sections: types.JSONText(`["21SW-A"]`)},
		},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	eng := New(DefaultOptions())

	first, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)
	second, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	require.Equal(t, first.Entries, second.Entries)
	require.Equal(t, first.FailedSessions, second.FailedSessions)
}

func TestGeneratePlacesAllSessions(t *testing.T) {
	eng := New(DefaultOptions())

	result, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	assert.Empty(t, result.FailedSessions)
	assert.Equal(t, result.Stats.SessionsTotal, result.Stats.SessionsPlaced)
	// DBS 3x2 sections + DSAP practical 3 periods x2 + SE 2 + THS 1
	assert.Len(t, result.Entries, 6+6+2+1)
}

func TestGenerateHardConstraintsHold(t *testing.T) {
	eng := New(DefaultOptions())

	for _, seed := range []int64{1, 42, 9001} {
		result, err := eng.Generate(context.Background(), testSnapshot(), seed)
		require.NoError(t, err)
		require.NotNil(t, result.Report)

		for _, c := range result.Report.Constraints {
			assert.NotEqual(t, models.ConstraintStatusFail, c.Status,
				"seed %d violated %s: %+v", seed, c.Name, c.Violations)
		}
	}
}

func TestGeneratePracticalBlockShape(t *testing.T) {
	eng := New(DefaultOptions())

	result, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	bySection := make(map[string][]models.TimetableEntry)
	for _, e := range result.Entries {
		if e.IsPractical {
			bySection[e.Section] = append(bySection[e.Section], e)
		}
	}
	require.Len(t, bySection, 2)

	for section, block := range bySection {
		require.Len(t, block, 3, "section %s", section)
		periods := make([]int, 0, 3)
		for _, e := range block {
			assert.Equal(t, block[0].Day, e.Day)
			assert.Equal(t, block[0].RoomID, e.RoomID)
			assert.Equal(t, block[0].TeacherID, e.TeacherID)
			require.NotNil(t, e.BlockID)
			assert.Equal(t, *block[0].BlockID, *e.BlockID)
			periods = append(periods, e.Period)
		}
		sort.Ints(periods)
		assert.Equal(t, periods[0]+1, periods[1])
		assert.Equal(t, periods[1]+1, periods[2])
		assert.Contains(t, []string{"lab-1", "lab-2"}, block[0].RoomID)
	}
}

func TestGenerateTheoryOnDistinctDays(t *testing.T) {
	eng := New(DefaultOptions())

	result, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	days := make(map[string]bool)
	for _, e := range result.Entries {
		if e.SubjectID == "sub-dbs" && e.Section == "24SW-A" {
			days[e.Day] = true
		}
	}
	assert.Len(t, days, 3)
}

func TestGenerateThesisDayReservation(t *testing.T) {
	eng := New(DefaultOptions())

	result, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	for _, e := range result.Entries {
		if e.SubjectID == "sub-ths" {
			assert.Equal(t, "WEDNESDAY", e.Day, "thesis sits on the reserved day")
		}
		if e.Section == "21SW-A" && e.SubjectID != "sub-ths" {
			assert.NotEqual(t, "WEDNESDAY", e.Day, "final-year non-thesis stays off the reserved day")
		}
	}
}

func TestGenerateEntryTimesFollowCalendar(t *testing.T) {
	eng := New(DefaultOptions())

	result, err := eng.Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)

	for _, e := range result.Entries {
		switch e.Period {
		case 1:
			assert.Equal(t, "08:30", e.StartTime)
			assert.Equal(t, "09:30", e.EndTime)
		case 2:
			assert.Equal(t, "09:30", e.StartTime)
			assert.Equal(t, "10:30", e.EndTime)
		}
	}
}

func TestGenerateRejectsEmptySnapshot(t *testing.T) {
	eng := New(DefaultOptions())

	snap := testSnapshot()
	snap.Teachers = nil
	_, err := eng.Generate(context.Background(), snap, 42)
	require.Error(t, err)

	snap = testSnapshot()
	snap.Rooms = nil
	_, err = eng.Generate(context.Background(), snap, 42)
	require.Error(t, err)
}

func TestGenerateCancelledContext(t *testing.T) {
	eng := New(DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := eng.Generate(ctx, testSnapshot(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.SessionsPlaced)
	assert.Len(t, result.FailedSessions, result.Stats.SessionsTotal)
	for _, f := range result.FailedSessions {
		assert.Contains(t, f.Reason, "budget")
		assert.Equal(t, FailureRunBudget, f.Constraint, "timeouts are not blamed on a hard constraint")
	}
}

// latePreferenceStrategy inverts the default compactness preference and
// counts how often it is consulted.
type latePreferenceStrategy struct {
	calls  int
	budget int
}

func (s *latePreferenceStrategy) Score(_ Session, c Candidate) float64 {
	s.calls++
	return float64(c.Period)
}

func (s *latePreferenceStrategy) BacktrackBudget(sessionCount int) int {
	s.budget = 4 * sessionCount
	return s.budget
}

func TestGenerateWithCustomStrategy(t *testing.T) {
	strategy := &latePreferenceStrategy{}
	opts := DefaultOptions()
	opts.Strategy = strategy

	result, err := New(opts).Generate(context.Background(), testSnapshot(), 42)
	require.NoError(t, err)
	require.Empty(t, result.FailedSessions)
	assert.Positive(t, strategy.calls, "custom strategy ranks the candidates")
	assert.Positive(t, strategy.budget, "custom strategy bounds the backtracking")

	// A different preference may reorder the timetable but never breach
	// a hard constraint.
	assert.Equal(t, models.ConstraintStatusPass, result.Report.Status)
}
