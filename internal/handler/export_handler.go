package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/internal/service"
	"github.com/noah-isme/quick-event-planner/pkg/response"
)

// EventCountHeader carries the number of VEVENTs in a download.
const EventCountHeader = "X-Event-Count"

type exportService interface {
	Export(ctx context.Context, req dto.ExportRequest) (*service.ExportResult, error)
	ExportSelection(ctx context.Context, id string, details dto.EventDetails) (*service.ExportResult, error)
	SelectionReadiness(ctx context.Context, id string, details dto.EventDetails) (dto.Readiness, error)
}

// ExportHandler turns selections into .ics downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Export dates as iCalendar
// @Description One VEVENT per distinct date, all sharing the same details.
// @Tags Export
// @Accept json
// @Produce text/calendar
// @Param payload body dto.ExportRequest true "Dates and event details"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	download(c, result)
}

// ExportSession godoc
// @Summary Export a session as iCalendar
// @Tags Export
// @Accept json
// @Produce text/calendar
// @Param id path string true "Session ID"
// @Param payload body dto.EventDetails true "Event details"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/export [post]
func (h *ExportHandler) ExportSession(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var details dto.EventDetails
	if err := bindOptionalJSON(c, &details); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ExportSelection(c.Request.Context(), id, details)
	if err != nil {
		response.Error(c, err)
		return
	}
	download(c, result)
}

// Readiness godoc
// @Summary Check whether a session can be exported
// @Tags Export
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.EventDetails false "Event details"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/readiness [post]
func (h *ExportHandler) Readiness(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var details dto.EventDetails
	if err := bindOptionalJSON(c, &details); err != nil {
		response.Error(c, err)
		return
	}
	readiness, err := h.service.SelectionReadiness(c.Request.Context(), id, details)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, readiness)
}

func download(c *gin.Context, result *service.ExportResult) {
	c.Header(EventCountHeader, strconv.Itoa(result.EventCount))
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
