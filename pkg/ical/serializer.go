// Package ical renders event selections as iCalendar (RFC 5545) documents.
//
// Only VCALENDAR and VEVENT blocks are produced. Times are naive local
// wall-clock values; DTSTAMP is the only UTC value in the output.
package ical

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MediaType is the content type of a serialized calendar.
	MediaType = "text/calendar"
	// DefaultFilename is the suggested download name.
	DefaultFilename = "events.ics"
	// DefaultProductID identifies this tool in PRODID.
	DefaultProductID = "QuickEventPlanner"

	crlf = "\r\n"
)

var (
	// ErrNoDates is returned when the selection is empty.
	ErrNoDates = errors.New("ical: at least one date is required")
	// ErrEmptyTitle is returned when the title is blank.
	ErrEmptyTitle = errors.New("ical: event title is required")
)

// EventMetadata holds the attributes copied onto every generated event.
type EventMetadata struct {
	Title       string
	Description string
	Location    string
	AllDay      bool
	// StartTime and EndTime are ignored for all-day events. No ordering
	// is enforced between them.
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Serializer turns a DateSet plus EventMetadata into a calendar document.
type Serializer struct {
	productID string
	now       func() time.Time
	newUID    func() string
}

// Option customises a Serializer.
type Option func(*Serializer)

// WithClock overrides the DTSTAMP source.
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUIDGenerator overrides the UID source.
func WithUIDGenerator(gen func() string) Option {
	return func(s *Serializer) {
		if gen != nil {
			s.newUID = gen
		}
	}
}

// NewSerializer builds a serializer. An empty productID falls back to
// DefaultProductID.
func NewSerializer(productID string, opts ...Option) *Serializer {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		productID = DefaultProductID
	}
	s := &Serializer{
		productID: productID,
		now:       time.Now,
		newUID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductID returns the identifier written to PRODID.
func (s *Serializer) ProductID() string {
	return s.productID
}

// Serialize renders one VEVENT per date in ascending date order. It either
// returns a complete document or an error, never a partial document.
func (s *Serializer) Serialize(dates DateSet, meta EventMetadata) ([]byte, error) {
	if dates.Len() == 0 {
		return nil, ErrNoDates
	}
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	description := strings.TrimSpace(meta.Description)
	location := strings.TrimSpace(meta.Location)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//" + s.productID + "//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	for _, d := range dates.Sorted() {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+s.newUID(),
			"SUMMARY:"+EscapeText(title),
		)
		if description != "" {
			lines = append(lines, "DESCRIPTION:"+EscapeText(description))
		}
		if location != "" {
			lines = append(lines, "LOCATION:"+EscapeText(location))
		}
		lines = append(lines, "DTSTAMP:"+s.now().UTC().Format(icsUTCLayout))
		lines = append(lines, eventWindow(d, meta)...)
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, crlf) + crlf), nil
}

// eventWindow renders the DTSTART/DTEND pair for a single date. All-day
// events end on the following day (exclusive end).
func eventWindow(d Date, meta EventMetadata) []string {
	if meta.AllDay {
		return []string{
			"DTSTART;VALUE=DATE:" + d.time().Format(icsDateLayout),
			"DTEND;VALUE=DATE:" + d.AddDays(1).time().Format(icsDateLayout),
		}
	}
	return []string{
		"DTSTART:" + combine(d, meta.StartTime).Format(icsLocalLayout),
		"DTEND:" + combine(d, meta.EndTime).Format(icsLocalLayout),
	}
}

func combine(d Date, t TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\r", `\n`,
	"\n", `\n`,
)

// EscapeText applies the RFC 5545 TEXT escaping rules.
func EscapeText(v string) string {
	return textEscaper.Replace(v)
}
