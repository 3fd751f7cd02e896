package ical

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateValidatesCalendar(t *testing.T) {
	_, err := NewDate(2023, time.February, 29)
	assert.Error(t, err)

	d, err := NewDate(2024, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = NewDate(2024, 13, 1)
	assert.Error(t, err)
	_, err = NewDate(0, time.January, 1)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-12-31 ")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.December, Day: 31}, d)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
	_, err = ParseDate("31/12/2024")
	assert.Error(t, err)
}

func TestDateAddDaysRollsOver(t *testing.T) {
	cases := map[string]string{
		"2024-01-31": "2024-02-01",
		"2024-02-28": "2024-02-29",
		"2023-02-28": "2023-03-01",
		"2023-12-31": "2024-01-01",
	}
	for in, want := range cases {
		d, err := ParseDate(in)
		require.NoError(t, err)
		assert.Equal(t, want, d.AddDays(1).String(), in)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Dates []Date `json:"dates"`
	}
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"dates":["2024-03-01","2024-02-29"]}`), &p))
	require.Len(t, p.Dates, 2)
	assert.Equal(t, 29, p.Dates[1].Day)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dates":["2024-03-01","2024-02-29"]}`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`{"dates":["nope"]}`), &p))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, tod)

	tod, err = ParseTimeOfDay("23:59:30")
	require.NoError(t, err)
	assert.Equal(t, "23:59:30", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("")
	assert.Error(t, err)
}

func TestDateSetIsImmutable(t *testing.T) {
	a, _ := ParseDate("2024-01-01")
	b, _ := ParseDate("2024-01-02")

	base := NewDateSet(a)
	grown := base.With(b)
	shrunk := grown.Without(a)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, grown.Len())
	assert.Equal(t, []Date{b}, shrunk.Sorted())
	assert.True(t, grown.Contains(a))
	assert.False(t, shrunk.Contains(a))
	assert.False(t, DateSet{}.Contains(a))
}
