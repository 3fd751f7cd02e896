package ical

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	icsDateLayout  = "20060102"
	icsLocalLayout = "20060102T150405"
	icsUTCLayout   = "20060102T150405Z"
)

// Date is a calendar day without time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the tuple against the proleptic Gregorian calendar.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, fmt.Errorf("year %d out of range", year)
	}
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("month %d out of range", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return Date{}, fmt.Errorf("invalid day %04d-%02d-%02d", year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf drops the clock part of t as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later, rolling over months and years.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders YYYY-MM-DD.
func (d Date) String() string {
	return d.time().Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a naive wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"15:04", "15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", raw)
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// DateSet is a deduplicated collection of dates.
type DateSet struct {
	items map[Date]struct{}
}

// NewDateSet builds a set from the given dates; duplicates collapse.
func NewDateSet(dates ...Date) DateSet {
	s := DateSet{items: make(map[Date]struct{}, len(dates))}
	for _, d := range dates {
		s.items[d] = struct{}{}
	}
	return s
}

// Len returns the number of distinct dates.
func (s DateSet) Len() int {
	return len(s.items)
}

// Contains reports membership.
func (s DateSet) Contains(d Date) bool {
	_, ok := s.items[d]
	return ok
}

// With returns a copy of s that includes d.
func (s DateSet) With(d Date) DateSet {
	out := s.clone()
	out.items[d] = struct{}{}
	return out
}

// Without returns a copy of s that excludes d.
func (s DateSet) Without(d Date) DateSet {
	out := s.clone()
	delete(out.items, d)
	return out
}

// Sorted returns the dates in ascending chronological order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s.items))
	for d := range s.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s DateSet) clone() DateSet {
	out := DateSet{items: make(map[Date]struct{}, len(s.items)+1)}
	for d := range s.items {
		out.items[d] = struct{}{}
	}
	return out
}
