package engine

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func TestExpandDemandSessionCounts(t *testing.T) {
	snap := testSnapshot()
	cal, err := NewCalendar(snap.Config)
	require.NoError(t, err)

	sessions, issues := ExpandDemand(snap, cal, DefaultOptions())
	assert.Empty(t, issues)

	// DBS: 3 credits x 2 sections, DSAP: 1 block x 2, SE: 2, THS: 1
	assert.Len(t, sessions, 6+2+2+1)

	var practicals, thesis int
	for _, s := range sessions {
		if s.IsPractical {
			practicals++
			assert.Equal(t, practicalBlockLength, s.Duration)
		} else {
			assert.Equal(t, 1, s.Duration)
		}
		if s.IsThesis {
			thesis++
			assert.True(t, s.FinalYear)
		}
	}
	assert.Equal(t, 2, practicals)
	assert.Equal(t, 1, thesis)
}

func TestExpandDemandReportsMissingTeacher(t *testing.T) {
	snap := testSnapshot()
	snap.Assignments = snap.Assignments[:1] // only DBS retains a teacher
	cal, err := NewCalendar(snap.Config)
	require.NoError(t, err)

	sessions, issues := ExpandDemand(snap, cal, DefaultOptions())

	assert.Len(t, sessions, 6)
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.Contains(t, issue.Message, "no responsible teacher")
	}
}

func TestExpandDemandReportsAmbiguousTeacher(t *testing.T) {
	snap := testSnapshot()
	snap.Assignments = append(snap.Assignments, models.TeacherAssignment{
		ID: "a-dup", TeacherID: "t-2", SubjectID: "sub-dbs", Sections: types.JSONText(`["24SW-A"]`),
	})
	cal, err := NewCalendar(snap.Config)
	require.NoError(t, err)

	sessions, issues := ExpandDemand(snap, cal, DefaultOptions())

	require.Len(t, issues, 1)
	assert.Equal(t, "sub-dbs", issues[0].SubjectID)
	assert.Equal(t, "24SW-A", issues[0].Section)
	assert.Contains(t, issues[0].Message, "expected exactly one")

	for _, s := range sessions {
		if s.SubjectID == "sub-dbs" {
			assert.NotEqual(t, "24SW-A", s.Section)
		}
	}
}

func TestExpandDemandReportsImpossibleCredits(t *testing.T) {
	snap := testSnapshot()
	snap.Subjects[0].Credits = 9 // more sessions than working days
	cal, err := NewCalendar(snap.Config)
	require.NoError(t, err)

	sessions, issues := ExpandDemand(snap, cal, DefaultOptions())

	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "distinct days")
	for _, s := range sessions {
		assert.NotEqual(t, "sub-dbs", s.SubjectID)
	}
}

func TestExpandDemandZeroCredits(t *testing.T) {
	snap := testSnapshot()
	snap.Subjects[2].Credits = 0 // SE
	cal, err := NewCalendar(snap.Config)
	require.NoError(t, err)

	_, issues := ExpandDemand(snap, cal, DefaultOptions())

	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "zero weekly sessions")
}
