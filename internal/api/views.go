package api

import (
	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/timeline"
)

// WindowView is a calendar window on the wire.
type WindowView struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PageLinkView points at an adjacent window.
type PageLinkView struct {
	WindowView
	URL string `json:"url"`
}

// PaginationView exposes the current window and its neighbours.
type PaginationView struct {
	Current  WindowView   `json:"current"`
	Previous PageLinkView `json:"previous"`
	Next     PageLinkView `json:"next"`
}

// ConnectionsResponse lists the primary's connections.
type ConnectionsResponse struct {
	Items []domain.Profile `json:"items"`
}

// ActivitiesResponse is the aggregated timeline before bucketing.
type ActivitiesResponse struct {
	WindowView
	Timelines  []timeline.ProfileActivities `json:"timelines"`
	Pagination PaginationView               `json:"pagination"`
	Errors     map[string]string            `json:"errors"`
}

// DayView holds the matched activities of one weekday.
type DayView struct {
	Weekday    string                 `json:"weekday"`
	Activities []domain.OwnedActivity `json:"activities"`
}

// WeeklyResponse is the bucketed and matched timeline.
type WeeklyResponse struct {
	RequestID string `json:"request_id"`
	WindowView
	Days            []string          `json:"days"`
	DailyActivities []DayView         `json:"daily_activities"`
	JointSessions   int               `json:"joint_sessions"`
	Pagination      PaginationView    `json:"pagination"`
	Errors          map[string]string `json:"errors"`
}

func toWindowView(w domain.Window) WindowView {
	return WindowView{
		StartDate: w.Start.Format(domain.DateLayout),
		EndDate:   w.End.Format(domain.DateLayout),
	}
}

func toPaginationView(p timeline.Pagination, route string) PaginationView {
	return PaginationView{
		Current:  toWindowView(p.Current),
		Previous: PageLinkView{WindowView: toWindowView(p.Previous.Window), URL: p.Previous.URL(route)},
		Next:     PageLinkView{WindowView: toWindowView(p.Next.Window), URL: p.Next.URL(route)},
	}
}

func toActivitiesResponse(q timeline.Query, result timeline.AggregationResult, route string) ActivitiesResponse {
	return ActivitiesResponse{
		WindowView: toWindowView(q.Window),
		Timelines:  result.Timelines(),
		Pagination: toPaginationView(timeline.Paginate(q.Connections, q.Window), route),
		Errors:     result.Errors(),
	}
}

func toWeeklyResponse(view timeline.WeeklyView, route string) WeeklyResponse {
	days := make([]string, 0, len(view.Days))
	for _, d := range view.Days {
		days = append(days, d.Format(domain.DateLayout))
	}

	daily := make([]DayView, 0, len(timeline.Weekdays))
	for _, wd := range timeline.Weekdays {
		daily = append(daily, DayView{Weekday: wd.String(), Activities: view.Daily[wd]})
	}

	return WeeklyResponse{
		RequestID:       view.RequestID,
		WindowView:      toWindowView(view.Window),
		Days:            days,
		DailyActivities: daily,
		JointSessions:   len(view.Links),
		Pagination:      toPaginationView(view.Pagination, route),
		Errors:          view.Errors,
	}
}
