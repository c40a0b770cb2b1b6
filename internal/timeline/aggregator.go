package timeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/timeline/internal/domain"
)

// ProfileResolver maps a connection identity to its profile.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, account string) (domain.Profile, error)
}

// ProfileIndex resolves profiles from a directory listing taken once per request.
type ProfileIndex map[string]domain.Profile

// NewProfileIndex indexes profiles by display name.
func NewProfileIndex(profiles []domain.Profile) ProfileIndex {
	index := make(ProfileIndex, len(profiles))
	for _, p := range profiles {
		index[p.DisplayName] = p
	}
	return index
}

// ResolveProfile returns a *LookupError for unknown accounts.
func (p ProfileIndex) ResolveProfile(_ context.Context, account string) (domain.Profile, error) {
	profile, ok := p[account]
	if !ok {
		return domain.Profile{}, &LookupError{Account: account}
	}
	return profile, nil
}

// Request describes one aggregation.
type Request struct {
	Primary      domain.Profile
	Connections  []string
	Window       domain.Window
	ActivityType string
}

// ProfileActivities is one profile's slice of the aggregated timeline.
type ProfileActivities struct {
	DisplayName string                   `json:"display_name"`
	Profile     domain.Profile           `json:"profile"`
	Activities  []*domain.ActivityRecord `json:"activities"`
}

// ConnectionResult is the outcome of a single connection: either activities or Err.
type ConnectionResult struct {
	Account    string
	Profile    domain.Profile
	Activities []*domain.ActivityRecord
	Err        error
}

// AggregationResult holds the primary timeline followed by every requested connection in
// input order.
type AggregationResult struct {
	Window      domain.Window
	Primary     ProfileActivities
	Connections []ConnectionResult
}

// Timelines lists the primary first, then each connection. Failed connections carry an
// empty activity list.
func (r AggregationResult) Timelines() []ProfileActivities {
	out := make([]ProfileActivities, 0, len(r.Connections)+1)
	out = append(out, r.Primary)
	for _, c := range r.Connections {
		profile := c.Profile
		if profile.DisplayName == "" {
			profile.DisplayName = c.Account
		}
		activities := c.Activities
		if c.Err != nil || activities == nil {
			activities = []*domain.ActivityRecord{}
		}
		out = append(out, ProfileActivities{DisplayName: c.Account, Profile: profile, Activities: activities})
	}
	return out
}

// Errors maps every failed connection to UnavailableMarker.
func (r AggregationResult) Errors() map[string]string {
	errs := make(map[string]string)
	for _, c := range r.Connections {
		if c.Err != nil {
			errs[c.Account] = UnavailableMarker
		}
	}
	return errs
}

// Owned flattens the result into profile tagged records, primary first.
func (r AggregationResult) Owned() []domain.OwnedActivity {
	var owned []domain.OwnedActivity
	for _, record := range r.Primary.Activities {
		owned = append(owned, domain.OwnedActivity{Profile: r.Primary.Profile, Record: record})
	}
	for _, c := range r.Connections {
		if c.Err != nil {
			continue
		}
		for _, record := range c.Activities {
			owned = append(owned, domain.OwnedActivity{Profile: c.Profile, Record: record})
		}
	}
	return owned
}

// AggregatorOption configures optional behaviour for the Aggregator.
type AggregatorOption func(*Aggregator)

// WithConcurrency bounds how many connections are fetched at once. One means sequential.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithAggregatorLogger sets the logger used to report isolated connection failures.
func WithAggregatorLogger(logger zerolog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// Aggregator fetches the primary timeline and every connection timeline for a window.
type Aggregator struct {
	fetcher     *Fetcher
	resolver    ProfileResolver
	concurrency int
	logger      zerolog.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(fetcher *Fetcher, resolver ProfileResolver, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher:     fetcher,
		resolver:    resolver,
		concurrency: 1,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fetches the primary first; its failure is returned unchanged and no result is
// produced. Connection failures are recorded on their ConnectionResult and never stop the
// remaining connections.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (AggregationResult, error) {
	start := time.Now()
	defer recordAggregate(start)

	activities, err := a.fetcher.FetchPrimary(ctx, req.Primary.DisplayName, req.Window, req.ActivityType)
	if err != nil {
		return AggregationResult{}, err
	}

	result := AggregationResult{
		Window: req.Window,
		Primary: ProfileActivities{
			DisplayName: req.Primary.DisplayName,
			Profile:     req.Primary,
			Activities:  activities,
		},
		Connections: make([]ConnectionResult, len(req.Connections)),
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, account := range req.Connections {
		i, account := i, account
		g.Go(func() error {
			result.Connections[i] = a.fetchConnection(ctx, account, req.Window)
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

func (a *Aggregator) fetchConnection(ctx context.Context, account string, window domain.Window) ConnectionResult {
	res := ConnectionResult{Account: account}

	profile, err := a.resolver.ResolveProfile(ctx, account)
	if err != nil {
		res.Err = err
		recordConnectionFailure(failureReason(err))
		a.logger.Error().Err(err).Str("connection", account).Msg("error resolving connection profile")
		return res
	}
	res.Profile = profile

	activities, err := a.fetcher.FetchConnection(ctx, account, window)
	if err != nil {
		res.Err = err
		recordConnectionFailure(failureReason(err))
		a.logger.Error().Err(err).Str("connection", account).Msg("error fetching connection activities")
		return res
	}
	res.Activities = activities
	return res
}

func failureReason(err error) string {
	if errors.Is(err, ErrUnknownConnection) {
		return "lookup"
	}
	return "fetch"
}
