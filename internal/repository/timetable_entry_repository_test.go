package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func sampleEntry() models.TimetableEntry {
	return models.TimetableEntry{
		ID:        "e-1",
		RunID:     "run-1",
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

func TestTimetableEntryReplaceForConfig(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE config_id = $1")).
		WithArgs("cfg-1").
		WillReturnResult(sqlmock.NewResult(0, 15))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	first := sampleEntry()
	second := sampleEntry()
	second.ID = "e-2"
	second.Period = 2

	entries := []models.TimetableEntry{first, second}
	require.NoError(t, repo.ReplaceForConfig(context.Background(), nil, "cfg-1", entries))
	assert.False(t, entries[0].CreatedAt.IsZero(), "replace stamps created_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "config_id", "subject_id", "teacher_id", "room_id", "batch_id", "section", "day", "period", "is_practical", "block_id", "start_time", "end_time", "created_at"}).
		AddRow("e-1", "run-1", "cfg-1", "sub-dbs", "t-1", "r-101", "b-24", "24SW-A", "MONDAY", 1, false, nil, "08:30", "09:30", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("AND config_id = $1 AND section = $2 ORDER BY day ASC, period ASC, section ASC")).
		WithArgs("cfg-1", "24SW-A").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.TimetableEntryFilter{ConfigID: "cfg-1", Section: "24SW-A"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "e-1", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryUpdateSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectExec("UPDATE timetable_entries SET day =").
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved := sampleEntry()
	moved.Day = "TUESDAY"
	moved.Period = 3

	require.NoError(t, repo.UpdateSlots(context.Background(), nil, []models.TimetableEntry{moved}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectQuery("SELECT .* FROM timetable_entries WHERE id =").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
}
