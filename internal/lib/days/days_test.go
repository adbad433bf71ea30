package days

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	got, err := Parse("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 1), got)

	_, err = Parse("01-06-2024")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestUntil_TableTests(t *testing.T) {
	start := date(2024, time.June, 1)

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{name: "two days before", today: date(2024, time.May, 30), want: 2},
		{name: "twelve days before", today: date(2024, time.May, 20), want: 12},
		{name: "same day", today: start, want: 0},
		{name: "late evening counts as calendar day", today: time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC), want: 1},
		{name: "after start", today: date(2024, time.June, 3), want: -2},
		{name: "across month with 31 days", today: date(2024, time.March, 31), want: 62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Until(tt.today, start))
		})
	}
}

func TestInsideWindow(t *testing.T) {
	start := date(2024, time.June, 1)

	assert.True(t, InsideWindow(date(2024, time.May, 30), start, 7))
	assert.True(t, InsideWindow(date(2024, time.May, 26), start, 7))
	assert.False(t, InsideWindow(date(2024, time.May, 25), start, 7), "exactly window days before is outside")
	assert.False(t, InsideWindow(date(2024, time.May, 20), start, 7))
	assert.True(t, InsideWindow(date(2024, time.June, 2), start, 0), "started trip is inside any window")
}
