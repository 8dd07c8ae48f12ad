package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/pkg/config"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type entryLister interface {
	List(ctx context.Context, filter models.TimetableEntryFilter) ([]models.TimetableEntry, error)
}

// ValidationService re-checks timetables against the full constraint
// set without mutating anything.
type ValidationService struct {
	loader  snapshotLoader
	entries entryLister
	sched   config.SchedulerConfig

	validator *validator.Validate
	logger    *zap.Logger
}

// NewValidationService wires the validation pipeline dependencies.
func NewValidationService(
	configs scheduleConfigReader,
	teachers teacherLister,
	rooms roomLister,
	batches batchReader,
	subjects subjectLister,
	assignments assignmentLister,
	entries entryLister,
	sched config.SchedulerConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *ValidationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationService{
		loader: snapshotLoader{
			configs:     configs,
			teachers:    teachers,
			rooms:       rooms,
			batches:     batches,
			subjects:    subjects,
			assignments: assignments,
		},
		entries:   entries,
		sched:     sched,
		validator: validate,
		logger:    logger,
	}
}

// Validate runs every constraint check against the supplied entries, or
// against the stored timetable when the request carries none.
func (s *ValidationService) Validate(ctx context.Context, req dto.ValidateTimetableRequest) (*models.ValidationReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}

	snap, err := s.loader.load(ctx, req.ConfigID)
	if err != nil {
		return nil, err
	}

	entries := req.Entries
	if len(entries) == 0 {
		entries, err = s.entries.List(ctx, models.TimetableEntryFilter{ConfigID: req.ConfigID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
		}
	}

	checker, err := engine.NewValidator(snap, engineOptions(s.sched))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "scheduling configuration rejected")
	}

	report := checker.Validate(entries)
	s.logger.Debug("timetable validated",
		zap.String("config_id", req.ConfigID),
		zap.String("status", string(report.Status)),
		zap.Int("entries", len(entries)),
	)
	return report, nil
}
