package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/campusops/timetable-api/pkg/errors"

	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
)

type scheduleConfigReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleConfig, error)
}

type teacherLister interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
}

type roomLister interface {
	List(ctx context.Context, roomType models.RoomType) ([]models.Room, error)
}

type batchReader interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListSections(ctx context.Context) ([]models.Section, error)
}

type subjectLister interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type assignmentLister interface {
	List(ctx context.Context) ([]models.TeacherAssignment, error)
}

// snapshotLoader assembles the read-only input for one engine run.
type snapshotLoader struct {
	configs     scheduleConfigReader
	teachers    teacherLister
	rooms       roomLister
	batches     batchReader
	subjects    subjectLister
	assignments assignmentLister
}

func (l *snapshotLoader) load(ctx context.Context, configID string) (*engine.Snapshot, error) {
	cfg, err := l.configs.FindByID(ctx, configID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule configuration")
	}

	active := true
	teachers, err := l.teachers.List(ctx, models.TeacherFilter{Active: &active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	rooms, err := l.rooms.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	batches, err := l.batches.ListBatches(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}

	sections, err := l.batches.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}

	subjects, err := l.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	assignments, err := l.assignments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignments")
	}

	return &engine.Snapshot{
		Config:      *cfg,
		Teachers:    teachers,
		Rooms:       rooms,
		Batches:     batches,
		Sections:    sections,
		Subjects:    subjects,
		Assignments: assignments,
	}, nil
}
