package ical

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	goical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 30, 45, 0, time.FixedZone("X", 2*60*60))

func newTestSerializer() *Serializer {
	n := 0
	return NewSerializer("", WithClock(func() time.Time { return fixedNow }), WithUIDGenerator(func() string {
		n++
		return fmt.Sprintf("uid-%d", n)
	}))
}

func mustDate(t *testing.T, raw string) Date {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func splitLines(t *testing.T, out []byte) []string {
	t.Helper()
	s := string(out)
	require.True(t, strings.HasSuffix(s, "\r\n"), "document must end with CRLF")
	lines := strings.Split(strings.TrimSuffix(s, "\r\n"), "\r\n")
	for _, line := range lines {
		require.NotContains(t, line, "\n", "bare LF inside %q", line)
		require.NotContains(t, line, "\r", "bare CR inside %q", line)
	}
	return lines
}

func TestSerializeAllDayAcrossLeapDay(t *testing.T) {
	s := newTestSerializer()
	dates := NewDateSet(mustDate(t, "2024-03-01"), mustDate(t, "2024-02-29"))

	out, err := s.Serialize(dates, EventMetadata{Title: "Standup", AllDay: true})
	require.NoError(t, err)

	expected := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//QuickEventPlanner//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:uid-1",
		"SUMMARY:Standup",
		"DTSTAMP:20240501T103045Z",
		"DTSTART;VALUE=DATE:20240229",
		"DTEND;VALUE=DATE:20240301",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:uid-2",
		"SUMMARY:Standup",
		"DTSTAMP:20240501T103045Z",
		"DTSTART;VALUE=DATE:20240301",
		"DTEND;VALUE=DATE:20240302",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	assert.Equal(t, expected, splitLines(t, out))
}

func TestSerializeTimedEndBeforeStartIsKept(t *testing.T) {
	s := newTestSerializer()
	meta := EventMetadata{
		Title:     "Sync",
		StartTime: TimeOfDay{Hour: 9},
		EndTime:   TimeOfDay{Hour: 8, Minute: 30},
	}

	out, err := s.Serialize(NewDateSet(mustDate(t, "2024-06-15")), meta)
	require.NoError(t, err)

	lines := splitLines(t, out)
	assert.Contains(t, lines, "DTSTART:20240615T090000")
	assert.Contains(t, lines, "DTEND:20240615T083000")
	assert.NotContains(t, string(out), "VALUE=DATE")
}

func TestSerializeYearRollover(t *testing.T) {
	s := newTestSerializer()
	out, err := s.Serialize(NewDateSet(mustDate(t, "2023-12-31")), EventMetadata{Title: "NYE", AllDay: true})
	require.NoError(t, err)

	lines := splitLines(t, out)
	assert.Contains(t, lines, "DTSTART;VALUE=DATE:20231231")
	assert.Contains(t, lines, "DTEND;VALUE=DATE:20240101")
}

func TestSerializeOrdersAndDeduplicates(t *testing.T) {
	s := newTestSerializer()
	dates := NewDateSet(
		mustDate(t, "2025-01-10"),
		mustDate(t, "2024-12-01"),
		mustDate(t, "2025-01-02"),
		mustDate(t, "2024-12-01"),
	)
	out, err := s.Serialize(dates, EventMetadata{Title: "Review", AllDay: true})
	require.NoError(t, err)

	var starts []string
	for _, line := range splitLines(t, out) {
		if strings.HasPrefix(line, "DTSTART") {
			starts = append(starts, line)
		}
	}
	assert.Equal(t, []string{
		"DTSTART;VALUE=DATE:20241201",
		"DTSTART;VALUE=DATE:20250102",
		"DTSTART;VALUE=DATE:20250110",
	}, starts)
	assert.Equal(t, 3, strings.Count(string(out), "BEGIN:VEVENT\r\n"))
	assert.Equal(t, 1, strings.Count(string(out), "BEGIN:VCALENDAR\r\n"))
	assert.Equal(t, 1, strings.Count(string(out), "END:VCALENDAR\r\n"))
}

func TestSerializeOptionalFields(t *testing.T) {
	s := newTestSerializer()
	date := NewDateSet(mustDate(t, "2024-07-04"))

	out, err := s.Serialize(date, EventMetadata{Title: "Picnic", Description: "   ", Location: "\t", AllDay: true})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "DESCRIPTION:")
	assert.NotContains(t, string(out), "LOCATION:")

	out, err = s.Serialize(date, EventMetadata{
		Title:       "Picnic",
		Description: "Bring food\nand drinks\r\nno glass",
		Location:    "Park",
		AllDay:      true,
	})
	require.NoError(t, err)
	lines := splitLines(t, out)
	assert.Contains(t, lines, `DESCRIPTION:Bring food\nand drinks\nno glass`)
	assert.Contains(t, lines, "LOCATION:Park")
}

func TestSerializeEscapesReservedCharacters(t *testing.T) {
	s := newTestSerializer()
	meta := EventMetadata{
		Title:       `Review: A, B; C`,
		Description: `path C:\temp; see notes, ok`,
		Location:    `Room 3B, Floor 2; East`,
		AllDay:      true,
	}
	out, err := s.Serialize(NewDateSet(mustDate(t, "2026-02-08")), meta)
	require.NoError(t, err)

	lines := splitLines(t, out)
	assert.Contains(t, lines, `SUMMARY:Review: A\, B\; C`)
	assert.Contains(t, lines, `DESCRIPTION:path C:\\temp\; see notes\, ok`)
	assert.Contains(t, lines, `LOCATION:Room 3B\, Floor 2\; East`)
}

func TestSerializeTrimsTitle(t *testing.T) {
	s := newTestSerializer()
	out, err := s.Serialize(NewDateSet(mustDate(t, "2024-01-01")), EventMetadata{Title: "  Launch  ", AllDay: true})
	require.NoError(t, err)
	assert.Contains(t, splitLines(t, out), "SUMMARY:Launch")
}

func TestSerializeRejectsInvalidInput(t *testing.T) {
	s := newTestSerializer()

	out, err := s.Serialize(NewDateSet(), EventMetadata{Title: "x"})
	assert.ErrorIs(t, err, ErrNoDates)
	assert.Nil(t, out)

	out, err = s.Serialize(DateSet{}, EventMetadata{Title: "x"})
	assert.ErrorIs(t, err, ErrNoDates)
	assert.Nil(t, out)

	out, err = s.Serialize(NewDateSet(mustDate(t, "2024-01-01")), EventMetadata{Title: " \t "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Nil(t, out)
}

func TestSerializeDefaultUIDsAreUnique(t *testing.T) {
	s := NewSerializer("Custom Tool")
	dates := NewDateSet()
	start := mustDate(t, "2024-01-01")
	for i := 0; i < 40; i++ {
		dates = dates.With(start.AddDays(i))
	}

	out, err := s.Serialize(dates, EventMetadata{Title: "Daily", AllDay: true})
	require.NoError(t, err)

	seen := map[string]struct{}{}
	for _, line := range splitLines(t, out) {
		if uid, ok := strings.CutPrefix(line, "UID:"); ok {
			require.Len(t, uid, 36)
			_, dup := seen[uid]
			require.False(t, dup, "duplicate uid %s", uid)
			seen[uid] = struct{}{}
		}
	}
	assert.Len(t, seen, 40)
	assert.Contains(t, string(out), "PRODID:-//Custom Tool//EN\r\n")
	assert.Equal(t, "Custom Tool", s.ProductID())
}

func TestSerializeOutputParsesWithThirdPartyReader(t *testing.T) {
	s := newTestSerializer()
	dates := NewDateSet(mustDate(t, "2024-02-29"), mustDate(t, "2024-03-01"))
	out, err := s.Serialize(dates, EventMetadata{Title: "Standup", Location: "HQ", AllDay: true})
	require.NoError(t, err)

	cal, err := goical.ParseCalendar(bytes.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0].GetProperty(goical.ComponentPropertyDtStart)
	require.NotNil(t, first)
	assert.Equal(t, "20240229", first.Value)
	assert.Equal(t, []string{"DATE"}, first.ICalParameters["VALUE"])

	end := events[1].GetProperty(goical.ComponentPropertyDtEnd)
	require.NotNil(t, end)
	assert.Equal(t, "20240302", end.Value)

	uid := events[1].GetProperty(goical.ComponentPropertyUniqueId)
	require.NotNil(t, uid)
	assert.Equal(t, "uid-2", uid.Value)
}
