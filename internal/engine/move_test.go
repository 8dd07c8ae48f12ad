package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func findEntry(entries []models.TimetableEntry, match func(models.TimetableEntry) bool) *models.TimetableEntry {
	for i := range entries {
		if match(entries[i]) {
			return &entries[i]
		}
	}
	return nil
}

func TestCheckMoveSuccess(t *testing.T) {
	snap, entries := generatedEntries(t)

	target := findEntry(entries, func(e models.TimetableEntry) bool {
		return e.SubjectID == "sub-dbs" && e.Section == "24SW-A"
	})
	require.NotNil(t, target)

	// pick a day this subject/section does not use yet
	used := make(map[string]bool)
	for _, e := range entries {
		if e.SubjectID == target.SubjectID && e.Section == target.Section {
			used[e.Day] = true
		}
	}
	var freeDay string
	for _, day := range []string{"MONDAY", "TUESDAY", "THURSDAY"} {
		if !used[day] {
			freeDay = day
			break
		}
	}
	require.NotEmpty(t, freeDay)

	// find a period where teacher, section and room are all free
	var outcome *MoveOutcome
	var violated string
	var err error
	for period := 1; period <= 6; period++ {
		outcome, violated, err = CheckMove(snap, DefaultOptions(), entries, MoveRequest{
			EntryID:   target.ID,
			NewDay:    freeDay,
			NewPeriod: period,
		})
		require.NoError(t, err)
		if violated == "" {
			break
		}
	}
	require.Empty(t, violated)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Updated, 1)

	moved := outcome.Updated[0]
	assert.Equal(t, target.ID, moved.ID)
	assert.Equal(t, freeDay, moved.Day)
	assert.NotEmpty(t, moved.StartTime)
	assert.NotEmpty(t, moved.EndTime)
}

func TestCheckMoveRejectsOutsideGrid(t *testing.T) {
	snap, entries := generatedEntries(t)
	target := findEntry(entries, func(e models.TimetableEntry) bool { return !e.IsPractical })
	require.NotNil(t, target)

	_, violated, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: target.ID, NewDay: "SUNDAY", NewPeriod: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationWorkingHours, violated)

	_, violated, err = CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: target.ID, NewDay: "MONDAY", NewPeriod: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationWorkingHours, violated)
}

func TestCheckMoveRejectsTeacherConflict(t *testing.T) {
	snap, entries := generatedEntries(t)

	// t-1 teaches DBS for both sections; moving the A entry onto the B
	// entry's slot double-books the teacher
	a := findEntry(entries, func(e models.TimetableEntry) bool {
		return e.TeacherID == "t-1" && e.Section == "24SW-A"
	})
	b := findEntry(entries, func(e models.TimetableEntry) bool {
		return e.TeacherID == "t-1" && e.Section == "24SW-B"
	})
	require.NotNil(t, a)
	require.NotNil(t, b)

	// avoid tripping the one-session-per-day rule first
	sameDay := findEntry(entries, func(e models.TimetableEntry) bool {
		return e.SubjectID == a.SubjectID && e.Section == a.Section && e.Day == b.Day
	})
	if sameDay != nil {
		t.Skip("fixture placed the subject on the target day already")
	}

	_, violated, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: a.ID, NewDay: b.Day, NewPeriod: b.Period,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationTeacherConflict, violated)
}

func TestCheckMoveRejectsSubjectFrequency(t *testing.T) {
	snap, entries := generatedEntries(t)

	var first, second *models.TimetableEntry
	for i := range entries {
		e := &entries[i]
		if e.SubjectID == "sub-dbs" && e.Section == "24SW-A" {
			if first == nil {
				first = e
			} else if second == nil && e.Day != first.Day {
				second = e
			}
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)

	// moving onto a day the subject already occupies for this section
	_, violated, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: first.ID, NewDay: second.Day, NewPeriod: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationSubjectFrequency, violated)
}

func TestCheckMoveRejectsThesisDay(t *testing.T) {
	snap, entries := generatedEntries(t)

	se := findEntry(entries, func(e models.TimetableEntry) bool { return e.SubjectID == "sub-se" })
	require.NotNil(t, se)

	_, violated, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: se.ID, NewDay: "WEDNESDAY", NewPeriod: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationThesisDay, violated)
}

func TestCheckMoveRejectsFridayOverrun(t *testing.T) {
	snap, entries := generatedEntries(t)

	// 21SW-A carries no practical, so Friday ends after the theory cap
	se := findEntry(entries, func(e models.TimetableEntry) bool { return e.SubjectID == "sub-se" })
	require.NotNil(t, se)

	if se.Day == "FRIDAY" {
		t.Skip("fixture already placed the subject on Friday")
	}

	_, violated, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: se.ID, NewDay: "FRIDAY", NewPeriod: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, MoveViolationFridayLimit, violated)
}

func TestCheckMoveMovesWholePracticalBlock(t *testing.T) {
	snap, entries := generatedEntries(t)

	head := findEntry(entries, func(e models.TimetableEntry) bool {
		return e.IsPractical && e.Section == "24SW-A"
	})
	require.NotNil(t, head)

	var outcome *MoveOutcome
	var violated string
	var err error
	for _, day := range []string{"MONDAY", "TUESDAY", "THURSDAY"} {
		if day == head.Day {
			continue
		}
		for period := 1; period <= 4; period++ {
			outcome, violated, err = CheckMove(snap, DefaultOptions(), entries, MoveRequest{
				EntryID: head.ID, NewDay: day, NewPeriod: period,
			})
			require.NoError(t, err)
			if violated == "" {
				break
			}
		}
		if violated == "" {
			break
		}
	}
	require.Empty(t, violated)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Updated, 3)

	for i, e := range outcome.Updated {
		assert.Equal(t, outcome.Updated[0].Day, e.Day)
		assert.Equal(t, outcome.Updated[0].Period+i, e.Period)
		assert.True(t, e.IsPractical)
	}
}

func TestCheckMoveUnknownEntry(t *testing.T) {
	snap, entries := generatedEntries(t)

	_, _, err := CheckMove(snap, DefaultOptions(), entries, MoveRequest{
		EntryID: "missing", NewDay: "MONDAY", NewPeriod: 1,
	})
	require.Error(t, err)
}
