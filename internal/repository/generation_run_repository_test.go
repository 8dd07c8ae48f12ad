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

func TestGenerationRunCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectExec("INSERT INTO generation_runs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.GenerationRun{ConfigID: "cfg-1", Seed: 42}
	require.NoError(t, repo.Create(context.Background(), nil, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())
	assert.Equal(t, models.GenerationRunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunCreateKeepsTerminalState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectExec("INSERT INTO generation_runs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	finished := time.Now().UTC()
	run := &models.GenerationRun{
		ID:          "run-1",
		ConfigID:    "cfg-1",
		Seed:        42,
		Status:      models.GenerationRunStatusCompleted,
		PlacedCount: 15,
		FinishedAt:  &finished,
	}
	require.NoError(t, repo.Create(context.Background(), nil, run))
	assert.Equal(t, models.GenerationRunStatusCompleted, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunFinish(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectExec("UPDATE generation_runs SET status =").
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := &models.GenerationRun{ID: "run-1", Status: models.GenerationRunStatusFailed}
	require.NoError(t, repo.Finish(context.Background(), nil, run))
	assert.NotNil(t, run.FinishedAt, "finish stamps finished_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunFindLatestByConfig(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "config_id", "seed", "status", "placed_count", "failed_count", "elapsed_ms", "error_message", "started_at", "finished_at"}).
		AddRow("run-2", "cfg-1", 42, "COMPLETED", 15, 0, 12, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, config_id, seed, status, placed_count, failed_count, elapsed_ms, error_message, started_at, finished_at FROM generation_runs WHERE config_id = $1 ORDER BY started_at DESC LIMIT 1")).
		WithArgs("cfg-1").
		WillReturnRows(rows)

	run, err := repo.FindLatestByConfig(context.Background(), "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, "run-2", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectQuery("SELECT .* FROM generation_runs WHERE id =").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
}
