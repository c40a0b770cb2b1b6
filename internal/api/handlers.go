// Package api exposes HTTP handlers for the timeline service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"example.com/timeline/internal/auth"
	"example.com/timeline/internal/connect"
	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/timeline"
)

// Routes served by the handler.
const (
	RouteConnections = "/v1/connections"
	RouteActivities  = "/v1/activities"
	RouteWeekly      = "/v1/activities/weekly"
)

// TimelineService is the subset of timeline.Service used by the handlers.
type TimelineService interface {
	Connections(ctx context.Context) ([]domain.Profile, error)
	Aggregate(ctx context.Context, q timeline.Query) (timeline.AggregationResult, error)
	Weekly(ctx context.Context, q timeline.Query) (timeline.WeeklyView, error)
}

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithLogger sets the logger used for failed requests.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock overrides the clock used to default the window to the current week.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler coordinates HTTP requests with the timeline service.
type Handler struct {
	service TimelineService
	limits  Limits
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(service TimelineService, limits Limits, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		limits:  limits,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.HandleFunc(RouteConnections, h.connections).Methods(http.MethodGet)
	r.HandleFunc(RouteActivities, h.activities).Methods(http.MethodGet)
	r.HandleFunc(RouteWeekly, h.weekly).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) connections(w http.ResponseWriter, r *http.Request) {
	caller, ok := authorize(w, r)
	if !ok {
		return
	}

	profiles, err := h.service.Connections(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	granted := make([]domain.Profile, 0, len(profiles))
	for _, p := range profiles {
		if caller.MayRead(p.DisplayName) {
			granted = append(granted, p)
		}
	}
	writeJSON(w, http.StatusOK, ConnectionsResponse{Items: granted})
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}

	result, err := h.service.Aggregate(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivitiesResponse(q, result, RouteActivities))
}

func (h *Handler) weekly(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}

	view, err := h.service.Weekly(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyResponse(view, RouteWeekly))
}

// parse authorizes the caller and validates the query. Requested connections outside the
// caller's grants are refused before any upstream call.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (timeline.Query, bool) {
	caller, ok := authorize(w, r)
	if !ok {
		return timeline.Query{}, false
	}

	q, err := ParseQuery(r.URL.Query(), h.limits, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return timeline.Query{}, false
	}
	if denied := caller.Denied(q.Connections); len(denied) > 0 {
		writeError(w, http.StatusForbidden, "connection_not_granted", "token does not grant: "+strings.Join(denied, ", "))
		return timeline.Query{}, false
	}
	return q, true
}

func authorize(w http.ResponseWriter, r *http.Request) (*auth.Caller, bool) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !caller.Can(auth.ScopeTimelineRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope timeline:read required")
		return nil, false
	}
	return caller, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")

	var (
		fetchErr  *timeline.FetchError
		statusErr *connect.StatusError
	)
	switch {
	case connect.IsUnauthorized(err):
		writeError(w, http.StatusBadGateway, "upstream_unauthorized", "upstream rejected the stored token")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "upstream_timeout", err.Error())
	case errors.As(err, &fetchErr), errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
