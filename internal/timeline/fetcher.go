// Package timeline aggregates activity timelines of a primary account and its
// connections over a calendar window and links activities performed together.
package timeline

import (
	"context"

	"github.com/rs/zerolog"

	"example.com/timeline/internal/domain"
)

// DefaultPageSize matches the page size used by the upstream web client.
const DefaultPageSize = 20

// PageSource exposes the upstream timeline one page at a time.
type PageSource interface {
	// SearchActivities reads a page of the primary account's timeline filtered server side.
	SearchActivities(ctx context.Context, offset, limit int, window domain.Window, activityType string) ([]*domain.ActivityRecord, error)
	// ConnectionActivities reads a page of a connection's timeline, newest first, unfiltered.
	ConnectionActivities(ctx context.Context, account string, offset, limit int) ([]*domain.ActivityRecord, error)
}

// FetcherOption configures optional behaviour for the Fetcher.
type FetcherOption func(*Fetcher)

// WithPageSize overrides DefaultPageSize. Non-positive values are ignored.
func WithPageSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// WithFetcherLogger sets the logger used for page level diagnostics.
func WithFetcherLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// Fetcher turns the page based upstream protocol into the list of records inside a window.
type Fetcher struct {
	source   PageSource
	pageSize int
	logger   zerolog.Logger
}

// NewFetcher constructs a Fetcher reading from source.
func NewFetcher(source PageSource, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:   source,
		pageSize: DefaultPageSize,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchPrimary pages through the primary account's filtered search until an empty page.
// Records are trusted to lie inside the window and keep the source order.
func (f *Fetcher) FetchPrimary(ctx context.Context, account string, window domain.Window, activityType string) ([]*domain.ActivityRecord, error) {
	var records []*domain.ActivityRecord
	for offset := 0; ; offset += f.pageSize {
		f.logger.Debug().Str("account", account).Int("offset", offset).Int("limit", f.pageSize).Msg("requesting activities page")

		page, err := f.source.SearchActivities(ctx, offset, f.pageSize, window, activityType)
		if err != nil {
			recordFetchFailure(accountPrimary)
			return nil, &FetchError{Account: account, Err: err}
		}
		recordPage(accountPrimary)
		if len(page) == 0 {
			return records, nil
		}
		records = append(records, page...)
	}
}

// FetchConnection walks a connection's unbounded timeline newest first. The scan stops at
// the first record dated before the window start or at an empty page; records dated
// after the window end are skipped.
func (f *Fetcher) FetchConnection(ctx context.Context, account string, window domain.Window) ([]*domain.ActivityRecord, error) {
	var records []*domain.ActivityRecord
	for offset := 0; ; offset += f.pageSize {
		f.logger.Debug().Str("account", account).Int("offset", offset).Int("limit", f.pageSize).Msg("requesting connection activities page")

		page, err := f.source.ConnectionActivities(ctx, account, offset, f.pageSize)
		if err != nil {
			recordFetchFailure(accountConnection)
			return nil, &FetchError{Account: account, Err: err}
		}
		recordPage(accountConnection)
		if len(page) == 0 {
			return records, nil
		}
		f.checkOrdering(account, offset, page)

		for _, record := range page {
			if record == nil {
				continue
			}
			date := record.LocalDate()
			if date.Before(window.Start) {
				return records, nil
			}
			if !date.After(window.End) {
				records = append(records, record)
			}
		}
	}
}

// checkOrdering flags pages that break the newest first assumption the early stop in
// FetchConnection relies on.
func (f *Fetcher) checkOrdering(account string, offset int, page []*domain.ActivityRecord) {
	for i := 1; i < len(page); i++ {
		if page[i] == nil || page[i-1] == nil {
			continue
		}
		if page[i].StartTimeLocal.After(page[i-1].StartTimeLocal) {
			outOfOrderCounter.Inc()
			f.logger.Warn().
				Str("account", account).
				Int("offset", offset).
				Int64("activity_id", page[i].ID).
				Msg("connection timeline page is not ordered newest first; results may be truncated")
			return
		}
	}
}
