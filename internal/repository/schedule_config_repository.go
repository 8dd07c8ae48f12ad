package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// ScheduleConfigRepository manages persistence for schedule configurations.
type ScheduleConfigRepository struct {
	db *sqlx.DB
}

// NewScheduleConfigRepository constructs a ScheduleConfigRepository.
func NewScheduleConfigRepository(db *sqlx.DB) *ScheduleConfigRepository {
	return &ScheduleConfigRepository{db: db}
}

const scheduleConfigColumns = "id, name, working_days, periods_per_day, start_time, period_minutes, end_time, seed, status, created_at, updated_at"

// List returns all configurations newest first.
func (r *ScheduleConfigRepository) List(ctx context.Context) ([]models.ScheduleConfig, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_configs ORDER BY created_at DESC", scheduleConfigColumns)
	var configs []models.ScheduleConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list schedule configs: %w", err)
	}
	return configs, nil
}

// FindByID fetches a configuration by ID.
func (r *ScheduleConfigRepository) FindByID(ctx context.Context, id string) (*models.ScheduleConfig, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_configs WHERE id = $1", scheduleConfigColumns)
	var config models.ScheduleConfig
	if err := r.db.GetContext(ctx, &config, query, id); err != nil {
		return nil, err
	}
	return &config, nil
}

// Create inserts a new configuration.
func (r *ScheduleConfigRepository) Create(ctx context.Context, config *models.ScheduleConfig) error {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if config.CreatedAt.IsZero() {
		config.CreatedAt = now
	}
	config.UpdatedAt = now
	if config.Status == "" {
		config.Status = models.ScheduleConfigStatusDraft
	}

	const query = `INSERT INTO schedule_configs (id, name, working_days, periods_per_day, start_time, period_minutes, end_time, seed, status, created_at, updated_at)
		VALUES (:id, :name, :working_days, :periods_per_day, :start_time, :period_minutes, :end_time, :seed, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, config); err != nil {
		return fmt.Errorf("create schedule config: %w", err)
	}
	return nil
}

// UpdateSeed stores the tie-break seed chosen for a regeneration.
func (r *ScheduleConfigRepository) UpdateSeed(ctx context.Context, exec sqlx.ExtContext, id string, seed int64) error {
	if exec == nil {
		exec = r.db
	}
	const query = `UPDATE schedule_configs SET seed = $2, updated_at = $3 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, seed, time.Now().UTC()); err != nil {
		return fmt.Errorf("update schedule config seed: %w", err)
	}
	return nil
}

// UpdateStatus transitions a configuration's lifecycle state.
func (r *ScheduleConfigRepository) UpdateStatus(ctx context.Context, id string, status models.ScheduleConfigStatus) error {
	const query = `UPDATE schedule_configs SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update schedule config status: %w", err)
	}
	return nil
}
