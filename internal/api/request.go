package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/timeline"
)

// ParamActivityType optionally filters the primary timeline by activity type key.
const ParamActivityType = "activity_type"

// Limits bound the requests accepted by the handler.
type Limits struct {
	MaxConnections int
	MaxWindow      time.Duration
}

// ValidationError reports a rejected query parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParseQuery turns query parameters into a timeline query. Without end_date the window is
// the Monday to Sunday week containing start_date, which itself defaults to today.
func ParseQuery(values url.Values, limits Limits, today time.Time) (timeline.Query, error) {
	connections, err := parseConnections(values[timeline.ParamConnections], limits.MaxConnections)
	if err != nil {
		return timeline.Query{}, err
	}

	rawStart := strings.TrimSpace(values.Get(timeline.ParamStartDate))
	rawEnd := strings.TrimSpace(values.Get(timeline.ParamEndDate))

	var window domain.Window
	switch {
	case rawStart == "" && rawEnd == "":
		window = domain.WeekOf(today)
	case rawStart == "":
		return timeline.Query{}, &ValidationError{Field: timeline.ParamStartDate, Reason: "required when end_date is set"}
	default:
		start, err := domain.ParseDate(rawStart)
		if err != nil {
			return timeline.Query{}, &ValidationError{Field: timeline.ParamStartDate, Reason: "must be a YYYY-MM-DD date"}
		}
		if rawEnd == "" {
			window = domain.WeekOf(start)
			break
		}
		end, err := domain.ParseDate(rawEnd)
		if err != nil {
			return timeline.Query{}, &ValidationError{Field: timeline.ParamEndDate, Reason: "must be a YYYY-MM-DD date"}
		}
		if end.Before(start) {
			return timeline.Query{}, &ValidationError{Field: timeline.ParamEndDate, Reason: "must not be before start_date"}
		}
		window = domain.NewWindow(start, end)
	}

	if limits.MaxWindow > 0 && window.Span() > limits.MaxWindow {
		return timeline.Query{}, &ValidationError{
			Field:  timeline.ParamEndDate,
			Reason: fmt.Sprintf("window must not exceed %d days", int(limits.MaxWindow/(24*time.Hour))),
		}
	}

	return timeline.Query{
		Connections:  connections,
		Window:       window,
		ActivityType: strings.TrimSpace(values.Get(ParamActivityType)),
	}, nil
}

func parseConnections(raw []string, max int) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	connections := make([]string, 0, len(raw))
	for _, value := range raw {
		name := strings.TrimSpace(value)
		if name == "" {
			return nil, &ValidationError{Field: timeline.ParamConnections, Reason: "must not be empty"}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		connections = append(connections, name)
	}
	if len(connections) == 0 {
		return nil, &ValidationError{Field: timeline.ParamConnections, Reason: "at least one connection is required"}
	}
	if max > 0 && len(connections) > max {
		return nil, &ValidationError{Field: timeline.ParamConnections, Reason: fmt.Sprintf("at most %d connections are allowed", max)}
	}
	return connections, nil
}
