package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

func newValidationFixture(entries *stubEntryStore) *ValidationService {
	return NewValidationService(
		&stubConfigs{cfg: testScheduleConfig()},
		&stubTeachers{teachers: []models.Teacher{
			{ID: "t-1", FullName: "A. Memon", MaxSessionsPerDay: 6, UnavailableSlots: types.JSONText(`[]`), Active: true},
		}},
		&stubRooms{rooms: []models.Room{
			{ID: "r-101", Name: "Room 101", Type: models.RoomTypeRegular, Building: "Main Block", Active: true},
		}},
		&stubBatches{
			batches:  []models.Batch{{ID: "b-24", Name: "24SW", SemesterNumber: 4}},
			sections: []models.Section{{ID: "sec-1", BatchID: "b-24", Label: "24SW-A", Strength: 50}},
		},
		&stubSubjects{subjects: []models.Subject{
			{ID: "sub-dbs", BatchID: "b-24", Code: "DBS", Name: "Database Systems", Credits: 1},
		}},
		&stubAssignments{assignments: []models.TeacherAssignment{
			{ID: "a-1", TeacherID: "t-1", SubjectID: "sub-dbs", Sections: types.JSONText(`["24SW-A"]`)},
		}},
		entries,
		schedulerTestConfig(),
		nil,
		nil,
	)
}

func validEntry() models.TimetableEntry {
	return models.TimetableEntry{
		ID:        "e-1",
		ConfigID:  "cfg-1",
		SubjectID: "sub-dbs",
		TeacherID: "t-1",
		RoomID:    "r-101",
		BatchID:   "b-24",
		Section:   "24SW-A",
		Day:       "MONDAY",
		Period:    1,
		StartTime: "08:30",
		EndTime:   "09:30",
	}
}

func TestValidateSuppliedEntries(t *testing.T) {
	svc := newValidationFixture(&stubEntryStore{})

	report, err := svc.Validate(context.Background(), dto.ValidateTimetableRequest{
		ConfigID: "cfg-1",
		Entries:  []models.TimetableEntry{validEntry()},
	})
	require.NoError(t, err)
	require.Len(t, report.Constraints, 19)
	assert.Equal(t, models.ConstraintStatusPass, report.Status)
}

func TestValidateFallsBackToStoredEntries(t *testing.T) {
	store := &stubEntryStore{stored: []models.TimetableEntry{validEntry()}}
	svc := newValidationFixture(store)

	report, err := svc.Validate(context.Background(), dto.ValidateTimetableRequest{ConfigID: "cfg-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ConstraintStatusPass, report.Status)
}

func TestValidateFlagsHardViolation(t *testing.T) {
	bad := validEntry()
	bad.Day = "SUNDAY"
	svc := newValidationFixture(&stubEntryStore{})

	report, err := svc.Validate(context.Background(), dto.ValidateTimetableRequest{
		ConfigID: "cfg-1",
		Entries:  []models.TimetableEntry{bad},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConstraintStatusFail, report.Status)
}

func TestValidateUnknownConfig(t *testing.T) {
	svc := newValidationFixture(&stubEntryStore{})

	_, err := svc.Validate(context.Background(), dto.ValidateTimetableRequest{ConfigID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestValidateRequiresConfigID(t *testing.T) {
	svc := newValidationFixture(&stubEntryStore{})

	_, err := svc.Validate(context.Background(), dto.ValidateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
