package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	cases := map[string]string{
		"2025-03-17": "2025-03-17..2025-03-23",
		"2025-03-20": "2025-03-17..2025-03-23",
		"2025-03-23": "2025-03-17..2025-03-23",
		"2025-03-24": "2025-03-24..2025-03-30",
		"2024-12-31": "2024-12-30..2025-01-05",
	}
	for day, want := range cases {
		t.Run(day, func(t *testing.T) {
			d, err := ParseDate(day)
			require.NoError(t, err)
			require.Equal(t, want, WeekOf(d).String())
		})
	}
}

func TestWindowDaysAndContains(t *testing.T) {
	start, _ := ParseDate("2025-03-17")
	w := NewWindow(start.Add(15*time.Hour), start.AddDate(0, 0, 6).Add(23*time.Hour))

	days := w.Days()
	require.Len(t, days, 7)
	require.Equal(t, start, days[0])
	require.Equal(t, time.Sunday, days[6].Weekday())

	require.True(t, w.Contains(time.Date(2025, 3, 23, 23, 59, 0, 0, time.UTC)))
	require.True(t, w.Contains(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))
	require.False(t, w.Contains(time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC)))
	require.False(t, w.Contains(time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)))
}

func TestWindowShift(t *testing.T) {
	start, _ := ParseDate("2025-03-17")
	w := NewWindow(start, start.AddDate(0, 0, 6))

	require.Equal(t, "2025-03-24..2025-03-30", w.Shift(7).String())
	require.Equal(t, "2025-03-10..2025-03-16", w.Shift(-7).String())
	require.Equal(t, 6*24*time.Hour, w.Span())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("17/03/2025")
	require.ErrorContains(t, err, `invalid date "17/03/2025"`)
}
