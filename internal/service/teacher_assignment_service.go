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

type assignmentRepository interface {
	List(ctx context.Context) ([]models.TeacherAssignment, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// CreateAssignmentRequest maps a teacher to a subject for an explicit
// set of section labels.
type CreateAssignmentRequest struct {
	TeacherID string   `json:"teacher_id" validate:"required"`
	SubjectID string   `json:"subject_id" validate:"required"`
	Sections  []string `json:"sections" validate:"required,min=1,dive,required"`
}

// TeacherAssignmentService manages the teacher/subject/section mapping
// that drives demand expansion.
type TeacherAssignmentService struct {
	repo      assignmentRepository
	teachers  teacherFinder
	subjects  subjectFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherAssignmentService constructs a TeacherAssignmentService.
func NewTeacherAssignmentService(repo assignmentRepository, teachers teacherFinder, subjects subjectFinder, validate *validator.Validate, logger *zap.Logger) *TeacherAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAssignmentService{repo: repo, teachers: teachers, subjects: subjects, validator: validate, logger: logger}
}

// List returns all assignments, optionally scoped to one teacher.
func (s *TeacherAssignmentService) List(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error) {
	var (
		assignments []models.TeacherAssignment
		err         error
	)
	if teacherID != "" {
		assignments, err = s.repo.ListByTeacher(ctx, teacherID)
	} else {
		assignments, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher assignments")
	}
	return assignments, nil
}

// Create registers a new assignment after checking both endpoints exist.
func (s *TeacherAssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.TeacherAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	labels := make([]string, 0, len(req.Sections))
	seen := make(map[string]bool, len(req.Sections))
	for _, label := range req.Sections {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		labels = append(labels, trimmed)
	}
	if len(labels) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sections must contain at least one label")
	}

	raw, err := json.Marshal(labels)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode sections")
	}

	assignment := &models.TeacherAssignment{
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		Sections:  types.JSONText(raw),
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher assignment")
	}
	return assignment, nil
}

// Delete removes an assignment.
func (s *TeacherAssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher assignment")
	}
	return nil
}
