package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/jobs"
	"github.com/campusops/timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	EnqueueGenerate(req dto.GenerateTimetableRequest) (*dto.GenerateTimetableAccepted, error)
	JobStatus(jobID string) (*jobs.Result, error)
	MoveEntry(ctx context.Context, entryID string, req dto.MoveEntryRequest) (*dto.MoveEntryResponse, error)
	ListEntries(ctx context.Context, query dto.TimetableEntryQuery) ([]models.TimetableEntry, error)
	GetRun(ctx context.Context, id string) (*models.GenerationRun, error)
	LatestRun(ctx context.Context, configID string) (*models.GenerationRun, error)
}

type timetableValidator interface {
	Validate(ctx context.Context, req dto.ValidateTimetableRequest) (*models.ValidationReport, error)
}

// TimetableHandler exposes generation, validation and edit endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	checker   timetableValidator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(generator *service.TimetableService, checker *service.ValidationService) *TimetableHandler {
	return &TimetableHandler{generator: generator, checker: checker}
}

// Generate godoc
// @Summary Generate a timetable for a configuration
// @Description Runs the full placement pipeline. With async=true the run is queued and a job ID returned for polling.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	if req.Async {
		accepted, err := h.generator.EnqueueGenerate(req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, accepted)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// JobStatus godoc
// @Summary Poll an asynchronous generation job
// @Tags Timetable
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/jobs/{id} [get]
func (h *TimetableHandler) JobStatus(c *gin.Context) {
	result, err := h.generator.JobStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Validate godoc
// @Summary Validate a timetable against every constraint
// @Description Checks supplied entries, or the stored timetable when the payload carries none. Hard violations fail, soft shortfalls warn.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ValidateTimetableRequest true "Validate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}

	report, err := h.checker.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Move godoc
// @Summary Move one entry to a new day and period
// @Description Practical entries move as a whole block. A rejected move names the violated constraint and leaves the timetable untouched.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Timetable entry ID"
// @Param payload body dto.MoveEntryRequest true "Move entry payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/entries/{id}/move [patch]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}

	result, err := h.generator.MoveEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ListEntries godoc
// @Summary List stored timetable entries
// @Tags Timetable
// @Produce json
// @Param configId query string true "Configuration ID"
// @Param section query string false "Section label"
// @Param teacherId query string false "Teacher ID"
// @Param day query string false "Day name"
// @Success 200 {object} response.Envelope
// @Router /timetable/entries [get]
func (h *TimetableHandler) ListEntries(c *gin.Context) {
	var query dto.TimetableEntryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry query"))
		return
	}

	entries, err := h.generator.ListEntries(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

// GetRun godoc
// @Summary Get a generation run by ID
// @Tags Timetable
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs/{id} [get]
func (h *TimetableHandler) GetRun(c *gin.Context) {
	run, err := h.generator.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

// LatestRun godoc
// @Summary Get the latest generation run for a configuration
// @Tags Timetable
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/runs/latest [get]
func (h *TimetableHandler) LatestRun(c *gin.Context) {
	run, err := h.generator.LatestRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}
