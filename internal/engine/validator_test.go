package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func generatedEntries(t *testing.T) (*Snapshot, []models.TimetableEntry) {
	t.Helper()
	snap := testSnapshot()
	result, err := New(DefaultOptions()).Generate(context.Background(), snap, 42)
	require.NoError(t, err)
	require.Empty(t, result.FailedSessions)
	return snap, result.Entries
}

func constraintByName(t *testing.T, report *models.ValidationReport, name string) models.ConstraintReport {
	t.Helper()
	for _, c := range report.Constraints {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("constraint %s missing from report", name)
	return models.ConstraintReport{}
}

func TestValidateReportsAllConstraints(t *testing.T) {
	snap, entries := generatedEntries(t)

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	require.Len(t, report.Constraints, 19)

	hard := map[string]bool{
		"cross_semester_conflicts": true, "subject_frequency": true,
		"teacher_conflicts": true, "room_conflicts": true,
		"practical_blocks": true, "friday_time_limits": true,
		"thesis_day_constraint": true, "teacher_assignments": true,
		"room_double_booking": true, "practical_same_lab": true,
		"practical_in_labs_only": true, "section_simultaneous_classes": true,
		"working_hours_compliance": true, "max_theory_per_day": true,
	}
	for _, c := range report.Constraints {
		if hard[c.Name] {
			assert.Equal(t, models.ConstraintStatusPass, c.Status, c.Name)
		} else {
			assert.NotEqual(t, models.ConstraintStatusFail, c.Status, c.Name)
		}
	}
	assert.Equal(t, models.ConstraintStatusPass, report.Status)
}

func TestValidateDetectsTeacherConflict(t *testing.T) {
	snap, entries := generatedEntries(t)

	// force two classes onto the same teacher slot
	var first, second *models.TimetableEntry
	for i := range entries {
		if entries[i].TeacherID == "t-1" && entries[i].Section == "24SW-A" {
			if first == nil {
				first = &entries[i]
			}
		}
		if entries[i].TeacherID == "t-1" && entries[i].Section == "24SW-B" && second == nil {
			second = &entries[i]
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)
	second.Day = first.Day
	second.Period = first.Period

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	assert.Equal(t, models.ConstraintStatusFail, report.Status)

	c := constraintByName(t, report, "teacher_conflicts")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
	require.NotEmpty(t, c.Violations)
	assert.Equal(t, "t-1", c.Violations[0].TeacherID)
}

func TestValidateDetectsPracticalOutsideLab(t *testing.T) {
	snap, entries := generatedEntries(t)

	for i := range entries {
		if entries[i].IsPractical {
			entries[i].RoomID = "r-101"
		}
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	c := constraintByName(t, report, "practical_in_labs_only")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
	assert.NotEmpty(t, c.Violations)
}

func TestValidateDetectsBrokenPracticalBlock(t *testing.T) {
	snap, entries := generatedEntries(t)

	for i := range entries {
		if entries[i].IsPractical && entries[i].Section == "24SW-A" {
			entries[i].Period += 2 // tears the consecutive run apart
			break
		}
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	c := constraintByName(t, report, "practical_blocks")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
}

func TestValidateDetectsThesisDayBreach(t *testing.T) {
	snap, entries := generatedEntries(t)

	for i := range entries {
		if entries[i].SubjectID == "sub-se" {
			entries[i].Day = "WEDNESDAY"
			break
		}
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	c := constraintByName(t, report, "thesis_day_constraint")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
	require.NotEmpty(t, c.Violations)
	assert.Contains(t, c.Violations[0].Description, "reserved day")
}

func TestValidateDetectsFridayOverrun(t *testing.T) {
	snap, entries := generatedEntries(t)

	// 21SW-A has no practical subject, so its Friday cap is the theory cap
	for i := range entries {
		if entries[i].Section == "21SW-A" && entries[i].SubjectID == "sub-se" {
			entries[i].Day = "FRIDAY"
			entries[i].Period = 5
			break
		}
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	c := constraintByName(t, report, "friday_time_limits")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
}

func TestValidateDetectsUnassignedTeacher(t *testing.T) {
	snap, entries := generatedEntries(t)

	for i := range entries {
		if entries[i].SubjectID == "sub-dbs" {
			entries[i].TeacherID = "t-3"
			break
		}
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(entries)
	c := constraintByName(t, report, "teacher_assignments")
	assert.Equal(t, models.ConstraintStatusFail, c.Status)
}

func TestValidateWarnsOnGaps(t *testing.T) {
	snap := testSnapshot()
	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	gapped := []models.TimetableEntry{
		{ID: "e-1", Section: "24SW-A", SubjectID: "sub-dbs", Day: "MONDAY", Period: 1},
		{ID: "e-2", Section: "24SW-A", SubjectID: "sub-se", Day: "MONDAY", Period: 3},
	}

	violations, compliant := v.checkCompactness(gapped)
	require.Len(t, violations, 1)
	assert.Equal(t, 0, compliant)
	assert.Contains(t, violations[0].Description, "idle gaps")
}

func TestValidateFlagsThinDays(t *testing.T) {
	snap := testSnapshot()
	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	thin := []models.TimetableEntry{
		{ID: "e-1", Section: "24SW-A", SubjectID: "sub-dbs", Day: "MONDAY", Period: 1},
		{ID: "e-2", Section: "24SW-A", SubjectID: "sub-dsap", Day: "TUESDAY", Period: 1, IsPractical: true},
		{ID: "e-3", Section: "24SW-A", SubjectID: "sub-dsap", Day: "TUESDAY", Period: 2, IsPractical: true},
		{ID: "e-4", Section: "24SW-A", SubjectID: "sub-dsap", Day: "TUESDAY", Period: 3, IsPractical: true},
	}

	violations, compliant := v.checkMinimumDaily(thin)
	assert.Equal(t, 0, compliant)
	// one-class Monday, practical-only Tuesday, three empty days
	require.Len(t, violations, 5)

	byDay := make(map[string]string)
	for _, viol := range violations {
		byDay[viol.Day] = viol.Description
	}
	assert.Contains(t, byDay["MONDAY"], "only one class")
	assert.Contains(t, byDay["TUESDAY"], "only practical sessions")
	assert.Contains(t, byDay["WEDNESDAY"], "no classes")
}

func TestValidateFlagsLateTail(t *testing.T) {
	snap := testSnapshot()
	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	late := []models.TimetableEntry{
		{ID: "e-1", Section: "24SW-A", SubjectID: "sub-dbs", Day: "MONDAY", Period: 4},
		{ID: "e-2", Section: "24SW-A", SubjectID: "sub-se", Day: "MONDAY", Period: 5},
		{ID: "e-3", Section: "24SW-A", SubjectID: "sub-ths", Day: "MONDAY", Period: 6},
	}

	violations, compliant := v.checkCompactness(late)
	require.Len(t, violations, 1)
	assert.Equal(t, 0, compliant)
	assert.Contains(t, violations[0].Description, "until period 6")
}

func TestValidateFridayAwareTails(t *testing.T) {
	snap := testSnapshot()
	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	entries := []models.TimetableEntry{
		{ID: "e-1", Section: "24SW-A", SubjectID: "sub-dbs", Day: "MONDAY", Period: 6},
		{ID: "e-2", Section: "24SW-A", SubjectID: "sub-se", Day: "FRIDAY", Period: 3},
	}

	violations, compliant := v.checkFridayAwareness(entries)
	require.Len(t, violations, 1)
	assert.Equal(t, "MONDAY", violations[0].Day)
	assert.Equal(t, 1, compliant, "the Friday group itself is exempt")
}

func TestValidateWarningsNeverFailReport(t *testing.T) {
	snap, entries := generatedEntries(t)

	// drop everything a section has on one day; minimum_daily_classes warns
	filtered := entries[:0]
	for _, e := range entries {
		if e.Section == "24SW-B" && e.Day == entries[0].Day {
			continue
		}
		filtered = append(filtered, e)
	}

	v, err := NewValidator(snap, DefaultOptions())
	require.NoError(t, err)

	report := v.Validate(filtered)
	c := constraintByName(t, report, "minimum_daily_classes")
	assert.NotEqual(t, models.ConstraintStatusFail, c.Status)
}
