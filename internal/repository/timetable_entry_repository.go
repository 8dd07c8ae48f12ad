package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// TimetableEntryRepository manages persisted timetable entries.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository constructs a TimetableEntryRepository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

func (r *TimetableEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const entryColumns = "id, run_id, config_id, subject_id, teacher_id, room_id, batch_id, section, day, period, is_practical, block_id, start_time, end_time, created_at"

// ReplaceForConfig swaps a configuration's entries for a new run's
// output inside the caller's transaction, so readers never observe a
// mix of two runs.
func (r *TimetableEntryRepository) ReplaceForConfig(ctx context.Context, exec sqlx.ExtContext, configID string, entries []models.TimetableEntry) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM timetable_entries WHERE config_id = $1`, configID); err != nil {
		return fmt.Errorf("clear timetable entries: %w", err)
	}

	now := time.Now().UTC()
	const query = `
INSERT INTO timetable_entries (id, run_id, config_id, subject_id, teacher_id, room_id, batch_id, section, day, period, is_practical, block_id, start_time, end_time, created_at)
VALUES (:id, :run_id, :config_id, :subject_id, :teacher_id, :room_id, :batch_id, :section, :day, :period, :is_practical, :block_id, :start_time, :end_time, :created_at)`

	for i := range entries {
		entry := &entries[i]
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// List returns entries matching the filter, ordered for display.
func (r *TimetableEntryRepository) List(ctx context.Context, filter models.TimetableEntryFilter) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE 1=1", entryColumns)
	var args []interface{}

	if filter.ConfigID != "" {
		args = append(args, filter.ConfigID)
		query += fmt.Sprintf(" AND config_id = $%d", len(args))
	}
	if filter.RunID != "" {
		args = append(args, filter.RunID)
		query += fmt.Sprintf(" AND run_id = $%d", len(args))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		query += fmt.Sprintf(" AND section = $%d", len(args))
	}
	if filter.Teacher != "" {
		args = append(args, filter.Teacher)
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args))
	}
	if filter.Day != "" {
		args = append(args, filter.Day)
		query += fmt.Sprintf(" AND day = $%d", len(args))
	}
	query += " ORDER BY day ASC, period ASC, section ASC"

	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// FindByID fetches a single entry.
func (r *TimetableEntryRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE id = $1", entryColumns)
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateSlots rewrites day, period, and derived times for the given
// entries, used by single-slot moves.
func (r *TimetableEntryRepository) UpdateSlots(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	target := r.exec(exec)
	const query = `UPDATE timetable_entries SET day = :day, period = :period, start_time = :start_time, end_time = :end_time WHERE id = :id`
	for i := range entries {
		if _, err := sqlx.NamedExecContext(ctx, target, query, &entries[i]); err != nil {
			return fmt.Errorf("update timetable entry slot: %w", err)
		}
	}
	return nil
}
