package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
	"github.com/noah-isme/quick-event-planner/pkg/response"
)

type monthGridService interface {
	Month(year int, month time.Month, selected ical.DateSet, today ical.Date) (dto.MonthView, error)
}

// CalendarHandler serves stateless month grids.
type CalendarHandler struct {
	service monthGridService
	now     func() time.Time
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service monthGridService) *CalendarHandler {
	return &CalendarHandler{service: service, now: time.Now}
}

// Month godoc
// @Summary Month grid
// @Description Weeks of seven cells for the requested month. Padding cells have day 0.
// @Tags Calendar
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	today := ical.DateOf(h.now())

	year, err := queryInt(c, "year", today.Year)
	if err != nil {
		response.Error(c, err)
		return
	}
	month, err := queryInt(c, "month", int(today.Month))
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.Month(year, time.Month(month), ical.NewDateSet(), today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
