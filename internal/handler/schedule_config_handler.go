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

type scheduleConfigManager interface {
	List(ctx context.Context) ([]models.ScheduleConfig, error)
	Get(ctx context.Context, id string) (*models.ScheduleConfig, error)
	Create(ctx context.Context, req service.CreateScheduleConfigRequest) (*models.ScheduleConfig, error)
	UpdateStatus(ctx context.Context, id string, status models.ScheduleConfigStatus) (*models.ScheduleConfig, error)
}

// ScheduleConfigHandler exposes configuration CRUD endpoints.
type ScheduleConfigHandler struct {
	service scheduleConfigManager
}

// NewScheduleConfigHandler constructs the handler.
func NewScheduleConfigHandler(svc *service.ScheduleConfigService) *ScheduleConfigHandler {
	return &ScheduleConfigHandler{service: svc}
}

// List godoc
// @Summary List schedule configurations
// @Tags Configurations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /configs [get]
func (h *ScheduleConfigHandler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs)
}

// Get godoc
// @Summary Get a schedule configuration
// @Tags Configurations
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Router /configs/{id} [get]
func (h *ScheduleConfigHandler) Get(c *gin.Context) {
	cfg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// Create godoc
// @Summary Create a schedule configuration
// @Tags Configurations
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleConfigRequest true "Create configuration payload"
// @Success 201 {object} response.Envelope
// @Router /configs [post]
func (h *ScheduleConfigHandler) Create(c *gin.Context) {
	var req service.CreateScheduleConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}

	cfg, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cfg)
}

type updateConfigStatusRequest struct {
	Status models.ScheduleConfigStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Update a configuration's lifecycle status
// @Tags Configurations
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body updateConfigStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/status [patch]
func (h *ScheduleConfigHandler) UpdateStatus(c *gin.Context) {
	var req updateConfigStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	cfg, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}
