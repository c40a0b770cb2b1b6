// Package connect talks to the upstream fitness timeline API: activity timelines of the
// signed-in account and of its connections, and the connection directory.
package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"example.com/timeline/internal/domain"
)

// Upstream endpoints.
const (
	pathSearchActivities     = "/activitylist-service/activities/search/activities"
	pathConnectionActivities = "/activitylist-service/activities/{displayName}"
	pathConnections          = "/connection-service/connection/connections"
	pathSocialProfile        = "/userprofile-service/socialProfile"
	pathUserSettings         = "/userprofile-service/userprofile/user-settings"
)

const directoryPageSize = 20

// Option configures a Client during construction.
type Option func(*Client)

// WithTimeout bounds a single upstream request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client reads timelines and profiles from the upstream API.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchActivities reads one page of the signed-in account's timeline filtered by window
// and, when set, by activity type.
func (c *Client) SearchActivities(ctx context.Context, offset, limit int, window domain.Window, activityType string) ([]*domain.ActivityRecord, error) {
	params := map[string]string{
		"start":     strconv.Itoa(offset),
		"limit":     strconv.Itoa(limit),
		"startDate": window.Start.Format(domain.DateLayout),
		"endDate":   window.End.Format(domain.DateLayout),
	}
	if activityType != "" {
		params["activityType"] = activityType
	}

	var items []json.RawMessage
	if err := c.get(ctx, "search activities", pathSearchActivities, params, nil, &items); err != nil {
		return nil, err
	}
	return DecodeActivities(items)
}

// ConnectionActivities reads one page of a connection's timeline, newest first.
func (c *Client) ConnectionActivities(ctx context.Context, account string, offset, limit int) ([]*domain.ActivityRecord, error) {
	params := map[string]string{
		"start": strconv.Itoa(offset),
		"limit": strconv.Itoa(limit),
	}

	var page struct {
		ActivityList []json.RawMessage `json:"activityList"`
	}
	if err := c.get(ctx, "connection activities", pathConnectionActivities, params, map[string]string{"displayName": account}, &page); err != nil {
		return nil, err
	}
	return DecodeActivities(page.ActivityList)
}

type rawProfile struct {
	DisplayName           string `json:"displayName"`
	FullName              string `json:"fullName"`
	Location              string `json:"location"`
	ProfileImageURLMedium string `json:"profileImageUrlMedium"`
}

func (p rawProfile) toDomain() domain.Profile {
	return domain.Profile{
		DisplayName:     p.DisplayName,
		FullName:        p.FullName,
		Location:        p.Location,
		ProfileImageURL: p.ProfileImageURLMedium,
	}
}

// Self returns the signed-in account's profile including its measurement system.
func (c *Client) Self(ctx context.Context) (domain.Profile, error) {
	var raw rawProfile
	if err := c.get(ctx, "social profile", pathSocialProfile, nil, nil, &raw); err != nil {
		return domain.Profile{}, err
	}
	if raw.DisplayName == "" {
		return domain.Profile{}, fmt.Errorf("social profile: empty display name")
	}

	var settings struct {
		UserData struct {
			MeasurementSystem string `json:"measurementSystem"`
		} `json:"userData"`
	}
	if err := c.get(ctx, "user settings", pathUserSettings, nil, nil, &settings); err != nil {
		return domain.Profile{}, err
	}

	profile := raw.toDomain()
	profile.UnitSystem = settings.UserData.MeasurementSystem
	return profile, nil
}

// Connections pages through the signed-in account's connections.
func (c *Client) Connections(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for offset := 0; ; offset += directoryPageSize {
		params := map[string]string{
			"start": strconv.Itoa(offset),
			"limit": strconv.Itoa(directoryPageSize),
		}
		var page struct {
			UserConnections []rawProfile `json:"userConnections"`
		}
		if err := c.get(ctx, "connections", pathConnections, params, nil, &page); err != nil {
			return nil, err
		}
		for _, p := range page.UserConnections {
			profiles = append(profiles, p.toDomain())
		}
		if len(page.UserConnections) < directoryPageSize {
			return profiles, nil
		}
	}
}

// get issues a GET and decodes the JSON body into out. Empty bodies leave out untouched.
func (c *Client) get(ctx context.Context, operation, path string, params, pathParams map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%s network error: %w", operation, err)
	}
	c.logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &StatusError{Operation: operation, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}
