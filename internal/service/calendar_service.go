package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

var weekdayLabels = [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// CalendarService lays out month grids for the date picker.
type CalendarService struct {
	weekStart time.Weekday
}

// NewCalendarService constructs the service. weekStart is "monday" or
// "sunday"; anything else means Monday.
func NewCalendarService(weekStart string) *CalendarService {
	start := time.Monday
	if weekStart == "sunday" {
		start = time.Sunday
	}
	return &CalendarService{weekStart: start}
}

// WeekStart returns the first column of the grid.
func (s *CalendarService) WeekStart() time.Weekday {
	return s.weekStart
}

// Month builds the grid for year/month. Cells outside the month have Day 0.
// Selected and today flags are derived from the arguments.
func (s *CalendarService) Month(year int, month time.Month, selected ical.DateSet, today ical.Date) (dto.MonthView, error) {
	if month < time.January || month > time.December {
		return dto.MonthView{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 1 || year > 9999 {
		return dto.MonthView{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year must be between 1 and 9999, got %d", year))
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	offset := (int(first.Weekday()) - int(s.weekStart) + 7) % 7

	cells := make([]dto.DayCell, 0, 42)
	for i := 0; i < offset; i++ {
		cells = append(cells, dto.DayCell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		d := ical.Date{Year: year, Month: month, Day: day}
		date := d
		cells = append(cells, dto.DayCell{
			Day:      day,
			Date:     &date,
			Selected: selected.Contains(d),
			Today:    d == today,
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, dto.DayCell{})
	}

	weeks := make([][]dto.DayCell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}

	weekdays := make([]string, 7)
	for i := range weekdays {
		weekdays[i] = weekdayLabels[(int(s.weekStart)+i)%7]
	}

	return dto.MonthView{
		Year:     year,
		Month:    month,
		Label:    first.Format("January 2006"),
		Weekdays: weekdays,
		Weeks:    weeks,
	}, nil
}

// Shift moves year/month by delta months, rolling over years.
func (s *CalendarService) Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}
