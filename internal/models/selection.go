package models

import (
	"time"

	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

// Selection is the per-session date picker state: which days are chosen
// and which month the grid currently shows.
type Selection struct {
	ID        string      `json:"id"`
	Dates     []ical.Date `json:"dates"`
	ViewYear  int         `json:"view_year"`
	ViewMonth time.Month  `json:"view_month"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DateSet returns the selected dates as a set.
func (s *Selection) DateSet() ical.DateSet {
	return ical.NewDateSet(s.Dates...)
}

// SetDates stores set in ascending order.
func (s *Selection) SetDates(set ical.DateSet) {
	s.Dates = set.Sorted()
}
