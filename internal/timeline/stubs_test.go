package timeline

import (
	"context"
	"sync"
	"time"

	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/events"
)

type pageCall struct {
	account string
	offset  int
	limit   int
}

// stubSource serves pre-built pages indexed by offset/limit.
type stubSource struct {
	mu sync.Mutex

	primary     []*domain.ActivityRecord
	primaryErr  error
	connections map[string][]*domain.ActivityRecord
	connErrs    map[string]error
	// failAt fails a connection once the given offset is requested.
	failAt map[string]int

	delay       time.Duration
	inflight    int
	maxInflight int

	calls      []pageCall
	lastWindow domain.Window
	lastType   string
}

func (s *stubSource) enter() func() {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.maxInflight {
		s.maxInflight = s.inflight
	}
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func (s *stubSource) SearchActivities(_ context.Context, offset, limit int, window domain.Window, activityType string) ([]*domain.ActivityRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, pageCall{account: "", offset: offset, limit: limit})
	s.lastWindow = window
	s.lastType = activityType
	s.mu.Unlock()

	if s.primaryErr != nil {
		return nil, s.primaryErr
	}
	return slicePage(s.primary, offset, limit), nil
}

func (s *stubSource) ConnectionActivities(_ context.Context, account string, offset, limit int) ([]*domain.ActivityRecord, error) {
	defer s.enter()()

	s.mu.Lock()
	s.calls = append(s.calls, pageCall{account: account, offset: offset, limit: limit})
	err := s.connErrs[account]
	failAt, hasFailAt := s.failAt[account]
	records := s.connections[account]
	s.mu.Unlock()

	if err != nil && (!hasFailAt || offset >= failAt) {
		return nil, err
	}
	return slicePage(records, offset, limit), nil
}

func (s *stubSource) callsFor(account string) []pageCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []pageCall
	for _, c := range s.calls {
		if c.account == account {
			out = append(out, c)
		}
	}
	return out
}

func slicePage(records []*domain.ActivityRecord, offset, limit int) []*domain.ActivityRecord {
	if offset >= len(records) {
		return nil
	}
	end := min(offset+limit, len(records))
	return records[offset:end]
}

type stubDirectory struct {
	self        domain.Profile
	selfErr     error
	profiles    []domain.Profile
	profilesErr error
}

func (d stubDirectory) Self(context.Context) (domain.Profile, error) {
	return d.self, d.selfErr
}

func (d stubDirectory) Connections(context.Context) ([]domain.Profile, error) {
	return d.profiles, d.profilesErr
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range evts {
		p.types = append(p.types, e.Type)
	}
	return p.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func week(y int, m time.Month, d int) domain.Window {
	start := date(y, m, d)
	return domain.NewWindow(start, start.AddDate(0, 0, 6))
}

func swim(id int64, start time.Time) *domain.ActivityRecord {
	distance, duration := 1500.0, 1845.0
	return &domain.ActivityRecord{
		ID: id,
		ActivitySummary: domain.ActivitySummary{
			Name:           "Pool Swim",
			Type:           domain.ActivityType{TypeID: 26, TypeKey: "lap_swimming", ParentTypeID: 4},
			StartTimeLocal: start,
			StartTimeGMT:   start.Add(-time.Hour),
			Distance:       &distance,
			Duration:       &duration,
		},
	}
}

// descending builds one record per timestamp, ids counting up from firstID.
func descending(firstID int64, starts ...time.Time) []*domain.ActivityRecord {
	records := make([]*domain.ActivityRecord, 0, len(starts))
	for i, start := range starts {
		records = append(records, swim(firstID+int64(i), start))
	}
	return records
}
