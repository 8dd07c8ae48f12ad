package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

type assignmentManager interface {
	List(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error)
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.TeacherAssignment, error)
	Delete(ctx context.Context, id string) error
}

// TeacherAssignmentHandler exposes assignment endpoints.
type TeacherAssignmentHandler struct {
	service assignmentManager
}

// NewTeacherAssignmentHandler constructs the handler.
func NewTeacherAssignmentHandler(svc *service.TeacherAssignmentService) *TeacherAssignmentHandler {
	return &TeacherAssignmentHandler{service: svc}
}

// List godoc
// @Summary List teacher assignments
// @Tags Assignments
// @Produce json
// @Param teacherId query string false "Scope to one teacher"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *TeacherAssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context(), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// Create godoc
// @Summary Assign a teacher to a subject's sections
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Create assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *TeacherAssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Delete an assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *TeacherAssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
