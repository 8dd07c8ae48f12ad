package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type scheduleConfigRepository interface {
	List(ctx context.Context) ([]models.ScheduleConfig, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleConfig, error)
	Create(ctx context.Context, config *models.ScheduleConfig) error
	UpdateStatus(ctx context.Context, id string, status models.ScheduleConfigStatus) error
}

// CreateScheduleConfigRequest represents payload for new configurations.
type CreateScheduleConfigRequest struct {
	Name          string   `json:"name" validate:"required"`
	WorkingDays   []string `json:"working_days" validate:"required,min=1,dive,required"`
	PeriodsPerDay int      `json:"periods_per_day" validate:"required,min=1,max=12"`
	StartTime     string   `json:"start_time" validate:"required"`
	PeriodMinutes int      `json:"period_minutes" validate:"required,min=15,max=180"`
	EndTime       string   `json:"end_time" validate:"required"`
	Seed          int64    `json:"seed"`
}

// ScheduleConfigService manages timetable configurations.
type ScheduleConfigService struct {
	repo      scheduleConfigRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleConfigService constructs a ScheduleConfigService.
func NewScheduleConfigService(repo scheduleConfigRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleConfigService{repo: repo, validator: validate, logger: logger}
}

// List returns all configurations.
func (s *ScheduleConfigService) List(ctx context.Context) ([]models.ScheduleConfig, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule configurations")
	}
	return configs, nil
}

// Get returns a configuration by id.
func (s *ScheduleConfigService) Get(ctx context.Context, id string) (*models.ScheduleConfig, error) {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule configuration")
	}
	return cfg, nil
}

// Create registers a new configuration in DRAFT state.
func (s *ScheduleConfigService) Create(ctx context.Context, req CreateScheduleConfigRequest) (*models.ScheduleConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid configuration payload")
	}

	days := make([]string, 0, len(req.WorkingDays))
	seen := make(map[string]bool, len(req.WorkingDays))
	for _, day := range req.WorkingDays {
		normalized := strings.ToUpper(strings.TrimSpace(day))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		days = append(days, normalized)
	}
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "working_days must contain at least one day")
	}

	rawDays, err := json.Marshal(days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode working days")
	}

	cfg := &models.ScheduleConfig{
		Name:          strings.TrimSpace(req.Name),
		WorkingDays:   types.JSONText(rawDays),
		PeriodsPerDay: req.PeriodsPerDay,
		StartTime:     req.StartTime,
		PeriodMinutes: req.PeriodMinutes,
		EndTime:       req.EndTime,
		Seed:          req.Seed,
		Status:        models.ScheduleConfigStatusDraft,
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule configuration")
	}
	return cfg, nil
}

// UpdateStatus moves a configuration through its lifecycle.
func (s *ScheduleConfigService) UpdateStatus(ctx context.Context, id string, status models.ScheduleConfigStatus) (*models.ScheduleConfig, error) {
	switch status {
	case models.ScheduleConfigStatusDraft, models.ScheduleConfigStatusActive, models.ScheduleConfigStatusArchived:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown configuration status")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration status")
	}
	return s.Get(ctx, id)
}
