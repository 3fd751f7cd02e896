package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/internal/models"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
	"github.com/noah-isme/quick-event-planner/pkg/response"
)

type selectionService interface {
	Today() ical.Date
	Create(ctx context.Context, today ical.Date) (*models.Selection, error)
	Get(ctx context.Context, id string) (*models.Selection, error)
	Toggle(ctx context.Context, id string, date ical.Date) (*models.Selection, error)
	Clear(ctx context.Context, id string) (*models.Selection, error)
	Navigate(ctx context.Context, id string, req dto.NavigateRequest) (*models.Selection, error)
	Delete(ctx context.Context, id string) error
	View(sel *models.Selection) (dto.SelectionView, error)
}

type readinessReporter interface {
	Readiness(count int, title string) dto.Readiness
}

// SelectionHandler exposes date picker sessions.
type SelectionHandler struct {
	service   selectionService
	readiness readinessReporter
}

// NewSelectionHandler constructs the handler.
func NewSelectionHandler(service selectionService, readiness readinessReporter) *SelectionHandler {
	return &SelectionHandler{service: service, readiness: readiness}
}

// Create godoc
// @Summary Start a session
// @Description Creates an empty selection showing the current month.
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SelectionHandler) Create(c *gin.Context) {
	sel, err := h.service.Create(c.Request.Context(), h.service.Today())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusCreated, sel, "")
}

// Get godoc
// @Summary Get a session
// @Description Selected dates, the month grid and export readiness. Pass title to include it in the readiness check.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param title query string false "Event title"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SelectionHandler) Get(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, sel, c.Query("title"))
}

// Delete godoc
// @Summary Drop a session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SelectionHandler) Delete(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Toggle godoc
// @Summary Toggle a date
// @Description Adds the date when absent, removes it when present.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/dates/{date}/toggle [post]
func (h *SelectionHandler) Toggle(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := dateParam(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.service.Toggle(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, sel, "")
}

// Clear godoc
// @Summary Clear all dates
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/dates [delete]
func (h *SelectionHandler) Clear(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.service.Clear(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, sel, "")
}

// Navigate godoc
// @Summary Change the displayed month
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.NavigateRequest true "Delta of -1 or 1"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/navigate [post]
func (h *SelectionHandler) Navigate(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.NavigateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.service.Navigate(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, sel, "")
}

func (h *SelectionHandler) respond(c *gin.Context, status int, sel *models.Selection, title string) {
	view, err := h.service.View(sel)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := dto.SessionResponse{SelectionView: view}
	if h.readiness != nil {
		out.Readiness = h.readiness.Readiness(view.Count, strings.TrimSpace(title))
	}
	response.JSON(c, status, out)
}
