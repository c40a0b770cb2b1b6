package timeline

import (
	"net/url"

	"example.com/timeline/internal/domain"
)

// Query parameter names used by pagination links.
const (
	ParamConnections = "connections"
	ParamStartDate   = "start_date"
	ParamEndDate     = "end_date"
)

const weekShift = 7

// PageLink is an adjacent window and the query parameters that select it.
type PageLink struct {
	Window domain.Window
	Query  url.Values
}

// URL joins the query to a caller supplied route.
func (l PageLink) URL(route string) string {
	return route + "?" + l.Query.Encode()
}

// Pagination describes the current window and its neighbours one week apart.
type Pagination struct {
	Current  domain.Window
	Previous PageLink
	Next     PageLink
}

// Paginate shifts both boundaries of window by exactly seven days in each direction,
// whatever the window length.
func Paginate(connections []string, window domain.Window) Pagination {
	return Pagination{
		Current:  window,
		Previous: newPageLink(connections, window.Shift(-weekShift)),
		Next:     newPageLink(connections, window.Shift(weekShift)),
	}
}

func newPageLink(connections []string, window domain.Window) PageLink {
	query := url.Values{}
	for _, c := range connections {
		query.Add(ParamConnections, c)
	}
	query.Set(ParamStartDate, window.Start.Format(domain.DateLayout))
	query.Set(ParamEndDate, window.End.Format(domain.DateLayout))
	return PageLink{Window: window, Query: query}
}
