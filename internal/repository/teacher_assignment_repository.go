package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// TeacherAssignmentRepository manages teacher-subject-section mappings.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs a TeacherAssignmentRepository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

const assignmentColumns = "id, teacher_id, subject_id, sections, created_at, updated_at"

// List returns every assignment.
func (r *TeacherAssignmentRepository) List(ctx context.Context) ([]models.TeacherAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_assignments ORDER BY created_at ASC", assignmentColumns)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// ListByTeacher returns assignments held by one teacher.
func (r *TeacherAssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_assignments WHERE teacher_id = $1 ORDER BY created_at ASC", assignmentColumns)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher assignments by teacher: %w", err)
	}
	return assignments, nil
}

// Create inserts an assignment record.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO teacher_assignments (id, teacher_id, subject_id, sections, created_at, updated_at)
		VALUES (:id, :teacher_id, :subject_id, :sections, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *TeacherAssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teacher_assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return nil
}
