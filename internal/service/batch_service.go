package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type batchRepository interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	FindBatchByID(ctx context.Context, id string) (*models.Batch, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	CreateBatch(ctx context.Context, batch *models.Batch) error
	CreateSection(ctx context.Context, section *models.Section) error
}

// CreateBatchRequest represents payload for creating batches.
type CreateBatchRequest struct {
	Name           string `json:"name" validate:"required"`
	SemesterNumber int    `json:"semester_number" validate:"required,min=1,max=10"`
}

// CreateSectionRequest represents payload for creating sections.
type CreateSectionRequest struct {
	BatchID  string `json:"batch_id" validate:"required"`
	Label    string `json:"label" validate:"required"`
	Strength int    `json:"strength" validate:"omitempty,min=1"`
}

// BatchService manages batches and their sections.
type BatchService struct {
	repo      batchRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, validator: validate, logger: logger}
}

// ListBatches returns all batches.
func (s *BatchService) ListBatches(ctx context.Context) ([]models.Batch, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// GetBatch returns a batch by id.
func (s *BatchService) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindBatchByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// ListSections returns all sections across batches.
func (s *BatchService) ListSections(ctx context.Context) ([]models.Section, error) {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// CreateBatch registers a new batch.
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch := &models.Batch{
		Name:           strings.TrimSpace(req.Name),
		SemesterNumber: req.SemesterNumber,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// CreateSection registers a new section under a batch.
func (s *BatchService) CreateSection(ctx context.Context, req CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if _, err := s.GetBatch(ctx, req.BatchID); err != nil {
		return nil, err
	}

	section := &models.Section{
		BatchID:  req.BatchID,
		Label:    strings.TrimSpace(req.Label),
		Strength: req.Strength,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}
