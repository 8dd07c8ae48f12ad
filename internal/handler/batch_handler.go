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

type batchManager interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	CreateBatch(ctx context.Context, req service.CreateBatchRequest) (*models.Batch, error)
	CreateSection(ctx context.Context, req service.CreateSectionRequest) (*models.Section, error)
}

// BatchHandler exposes batch and section endpoints.
type BatchHandler struct {
	service batchManager
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// ListBatches godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches)
}

// GetBatch godoc
// @Summary Get a batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.service.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch)
}

// CreateBatch godoc
// @Summary Create a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.CreateBatchRequest true "Create batch payload"
// @Success 201 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	batch, err := h.service.CreateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// ListSections godoc
// @Summary List sections
// @Tags Batches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *BatchHandler) ListSections(c *gin.Context) {
	sections, err := h.service.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections)
}

// CreateSection godoc
// @Summary Create a section under a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.CreateSectionRequest true "Create section payload"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *BatchHandler) CreateSection(c *gin.Context) {
	var req service.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}

	section, err := h.service.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}
