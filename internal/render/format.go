package render

import (
	"fmt"
	"math"
	"time"
)

// Unit systems reported by the upstream user settings.
const (
	UnitsMetric    = "metric"
	UnitsStatuteUS = "statute_us"
)

const metersPerMile = 1609.344

// FormatDuration renders seconds as "1h 02min 03sec", dropping the hour part when zero.
// Half seconds round to even.
func FormatDuration(seconds float64) string {
	total := int64(math.RoundToEven(seconds))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dmin %02dsec", hours, minutes, secs)
	}
	return fmt.Sprintf("%dmin %02dsec", minutes, secs)
}

// FormatDistance renders meters in kilometres, or miles for statute_us.
func FormatDistance(meters float64, units string) string {
	if units == UnitsStatuteUS {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatTime renders the wall clock of t as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

func optionalDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return FormatDuration(*seconds)
}

func optionalDistance(meters *float64, units string) string {
	if meters == nil || *meters == 0 {
		return "-"
	}
	return FormatDistance(*meters, units)
}
