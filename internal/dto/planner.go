package dto

import (
	"time"

	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

// EventDetails is the event form shared by every selected date.
type EventDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	AllDay      *bool  `json:"all_day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// IsAllDay defaults to true, matching the form's initial state.
func (d EventDetails) IsAllDay() bool {
	return d.AllDay == nil || *d.AllDay
}

// ExportRequest is the stateless export payload.
type ExportRequest struct {
	Dates []string `json:"dates" validate:"required,min=1,dive,required"`
	EventDetails
}

// NavigateRequest moves the displayed month.
type NavigateRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

// Readiness tells the client whether an export can run and what is missing.
type Readiness struct {
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message,omitempty"`
}

// DayCell is one slot of the month grid. Day is zero for padding cells.
type DayCell struct {
	Day      int        `json:"day"`
	Date     *ical.Date `json:"date,omitempty"`
	Selected bool       `json:"selected"`
	Today    bool       `json:"today"`
}

// MonthView is a month grid ready to render.
type MonthView struct {
	Year     int         `json:"year"`
	Month    time.Month  `json:"month"`
	Label    string      `json:"label"`
	Weekdays []string    `json:"weekdays"`
	Weeks    [][]DayCell `json:"weeks"`
}

// SelectionView is the session payload returned to clients.
type SelectionView struct {
	ID        string      `json:"id"`
	Dates     []ical.Date `json:"dates"`
	Count     int         `json:"count"`
	Month     MonthView   `json:"month"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SessionResponse is a session view plus export readiness for its dates.
type SessionResponse struct {
	SelectionView
	Readiness Readiness `json:"readiness"`
}
