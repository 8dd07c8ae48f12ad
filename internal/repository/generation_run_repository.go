package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// GenerationRunRepository records executions of the scheduling pipeline.
type GenerationRunRepository struct {
	db *sqlx.DB
}

// NewGenerationRunRepository constructs a GenerationRunRepository.
func NewGenerationRunRepository(db *sqlx.DB) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

func (r *GenerationRunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const runColumns = "id, config_id, seed, status, placed_count, failed_count, elapsed_ms, error_message, started_at, finished_at"

// Create inserts a run in RUNNING state.
func (r *GenerationRunRepository) Create(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.GenerationRunStatusRunning
	}

	const query = `INSERT INTO generation_runs (id, config_id, seed, status, placed_count, failed_count, elapsed_ms, error_message, started_at, finished_at)
		VALUES (:id, :config_id, :seed, :status, :placed_count, :failed_count, :elapsed_ms, :error_message, :started_at, :finished_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, run); err != nil {
		return fmt.Errorf("create generation run: %w", err)
	}
	return nil
}

// Finish records the run's terminal state and counters.
func (r *GenerationRunRepository) Finish(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error {
	now := time.Now().UTC()
	if run.FinishedAt == nil {
		run.FinishedAt = &now
	}

	const query = `UPDATE generation_runs SET status = :status, placed_count = :placed_count, failed_count = :failed_count, elapsed_ms = :elapsed_ms, error_message = :error_message, finished_at = :finished_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, run); err != nil {
		return fmt.Errorf("finish generation run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *GenerationRunRepository) FindByID(ctx context.Context, id string) (*models.GenerationRun, error) {
	query := fmt.Sprintf("SELECT %s FROM generation_runs WHERE id = $1", runColumns)
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindLatestByConfig returns the most recent run for a configuration.
func (r *GenerationRunRepository) FindLatestByConfig(ctx context.Context, configID string) (*models.GenerationRun, error) {
	query := fmt.Sprintf("SELECT %s FROM generation_runs WHERE config_id = $1 ORDER BY started_at DESC LIMIT 1", runColumns)
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, configID); err != nil {
		return nil, err
	}
	return &run, nil
}
