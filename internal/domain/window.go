package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire and in query strings.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Window is an inclusive calendar date range. Start is never after End.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from the calendar dates of start and end.
func NewWindow(start, end time.Time) Window {
	return Window{Start: DateOf(start), End: DateOf(end)}
}

// WeekOf returns the Monday to Sunday window containing t.
func WeekOf(t time.Time) Window {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// DateOf truncates t to its calendar date, keeping the wall clock date of t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of t lies inside the window.
func (w Window) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Shift moves both boundaries by the given number of days.
func (w Window) Shift(days int) Window {
	return Window{Start: w.Start.AddDate(0, 0, days), End: w.End.AddDate(0, 0, days)}
}

// Span is the distance between the two boundaries.
func (w Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// Days lists every date of the window in order.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 0, int(w.Span()/day)+1)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String renders the window as "start..end".
func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
