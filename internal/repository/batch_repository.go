package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// BatchRepository manages persistence for batches and their sections.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// ListBatches returns all batches ordered by semester.
func (r *BatchRepository) ListBatches(ctx context.Context) ([]models.Batch, error) {
	const query = `SELECT id, name, semester_number, created_at, updated_at FROM batches ORDER BY semester_number DESC, name ASC`
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindBatchByID fetches a batch by ID.
func (r *BatchRepository) FindBatchByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, name, semester_number, created_at, updated_at FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListSections returns every section, ordered by label.
func (r *BatchRepository) ListSections(ctx context.Context) ([]models.Section, error) {
	const query = `SELECT id, batch_id, label, strength, created_at FROM sections ORDER BY label ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateBatch inserts a batch record.
func (r *BatchRepository) CreateBatch(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now

	const query = `INSERT INTO batches (id, name, semester_number, created_at, updated_at)
		VALUES (:id, :name, :semester_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// CreateSection inserts a section record.
func (r *BatchRepository) CreateSection(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sections (id, batch_id, label, strength, created_at)
		VALUES (:id, :batch_id, :label, :strength, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}
