package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/events"
)

// Directory lists the accounts visible to the primary session.
type Directory interface {
	Self(ctx context.Context) (domain.Profile, error)
	Connections(ctx context.Context) ([]domain.Profile, error)
}

// Query selects the connections and window of one request.
type Query struct {
	Connections  []string
	Window       domain.Window
	ActivityType string
}

// ServiceConfig holds tunables for the Service.
type ServiceConfig struct {
	PageSize    int
	Concurrency int
}

// ServiceOption configures optional behaviour for the Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the destination for joint session and aggregation events.
func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// Service runs the aggregate, bucket, match and paginate stages for one request.
type Service struct {
	source    PageSource
	directory Directory
	cfg       ServiceConfig
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(source PageSource, directory Directory, cfg ServiceConfig, opts ...ServiceOption) *Service {
	s := &Service{
		source:    source,
		directory: directory,
		cfg:       cfg,
		publisher: events.NoopPublisher{},
		logger:    zerolog.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connections lists the primary's connections.
func (s *Service) Connections(ctx context.Context) ([]domain.Profile, error) {
	return s.directory.Connections(ctx)
}

// Aggregate fetches the primary and connection timelines for q.
func (s *Service) Aggregate(ctx context.Context, q Query) (AggregationResult, error) {
	primary, err := s.directory.Self(ctx)
	if err != nil {
		return AggregationResult{}, &FetchError{Account: "self", Err: err}
	}

	var resolver ProfileResolver
	profiles, err := s.directory.Connections(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error listing connections")
		resolver = unavailableDirectory{err: err}
	} else {
		resolver = NewProfileIndex(profiles)
	}

	fetcher := NewFetcher(s.source, WithPageSize(s.cfg.PageSize), WithFetcherLogger(s.logger))
	aggregator := NewAggregator(fetcher, resolver, WithConcurrency(s.cfg.Concurrency), WithAggregatorLogger(s.logger))
	return aggregator.Aggregate(ctx, Request{
		Primary:      primary,
		Connections:  q.Connections,
		Window:       q.Window,
		ActivityType: q.ActivityType,
	})
}

// WeeklyView is the aggregated timeline bucketed by weekday with joint sessions linked.
type WeeklyView struct {
	RequestID  string
	Window     domain.Window
	Days       []time.Time
	Daily      map[time.Weekday][]domain.OwnedActivity
	Pagination Pagination
	Errors     map[string]string
	Links      []Link
}

// Weekly aggregates q, buckets the records by weekday and links joint sessions in each
// bucket independently.
func (s *Service) Weekly(ctx context.Context, q Query) (WeeklyView, error) {
	result, err := s.Aggregate(ctx, q)
	if err != nil {
		return WeeklyView{}, err
	}

	owned := result.Owned()
	daily := Bucket(owned)
	var links []Link
	for _, wd := range Weekdays {
		links = append(links, Match(daily[wd])...)
	}

	view := WeeklyView{
		RequestID:  uuid.NewString(),
		Window:     q.Window,
		Days:       q.Window.Days(),
		Daily:      daily,
		Pagination: Paginate(q.Connections, q.Window),
		Errors:     result.Errors(),
		Links:      links,
	}
	s.publish(ctx, result, view, len(owned))
	return view, nil
}

func (s *Service) publish(ctx context.Context, result AggregationResult, view WeeklyView, activityCount int) {
	now := s.now()
	requestedBy := result.Primary.Profile.DisplayName

	evts := make([]events.Event, 0, len(view.Links)+1)
	for _, link := range view.Links {
		evts = append(evts, events.Event{
			Type: events.TypeJointSessionLinked,
			Key:  requestedBy,
			Payload: events.JointSessionLinked{
				LinkID:         uuid.NewString(),
				RequestedBy:    requestedBy,
				ActivityType:   link.A.Record.Type.TypeKey,
				StartTimeLocal: link.A.Record.StartTimeLocal,
				Participants: []events.Participant{
					{DisplayName: link.A.Profile.DisplayName, ActivityID: link.A.Record.ID},
					{DisplayName: link.B.Profile.DisplayName, ActivityID: link.B.Record.ID},
				},
				DetectedAt: now,
			},
		})
	}

	failed := make([]string, 0, len(view.Errors))
	connections := make([]string, 0, len(result.Connections))
	for _, c := range result.Connections {
		connections = append(connections, c.Account)
		if c.Err != nil {
			failed = append(failed, c.Account)
		}
	}
	evts = append(evts, events.Event{
		Type: events.TypeTimelineAggregated,
		Key:  requestedBy,
		Payload: events.TimelineAggregated{
			RequestID:         view.RequestID,
			RequestedBy:       requestedBy,
			StartDate:         view.Window.Start.Format(domain.DateLayout),
			EndDate:           view.Window.End.Format(domain.DateLayout),
			Connections:       connections,
			FailedConnections: failed,
			ActivityCount:     activityCount,
			LinkCount:         len(view.Links),
			OccurredAt:        now,
		},
	})

	if err := s.publisher.Publish(ctx, evts...); err != nil {
		s.logger.Warn().Err(err).Str("request_id", view.RequestID).Msg("failed to publish timeline events")
	}
}

// unavailableDirectory fails every lookup with the directory listing error.
type unavailableDirectory struct {
	err error
}

func (u unavailableDirectory) ResolveProfile(_ context.Context, account string) (domain.Profile, error) {
	return domain.Profile{}, &FetchError{Account: account, Err: fmt.Errorf("list connections: %w", u.err)}
}
