// Package bootstrap wires configuration into the collaborators shared by the timeline
// binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"example.com/timeline/internal/config"
	"example.com/timeline/internal/connect"
	"example.com/timeline/internal/events"
	"example.com/timeline/internal/timeline"
	"example.com/timeline/internal/tokenstore"
	"example.com/timeline/internal/tokenstore/postgres"
)

// ErrTokenExpired indicates the stored upstream token must be re-imported.
var ErrTokenExpired = errors.New("stored upstream token has expired")

// OpenTokenStore returns the configured token store and a function releasing its resources.
func OpenTokenStore(ctx context.Context, cfg config.Config) (tokenstore.Store, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure token schema: %w", err)
		}
		return store, pool.Close, nil
	case config.TokenStoreFile:
		return tokenstore.NewFileStore(cfg.TokenFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported token store %q", cfg.TokenStore)
	}
}

// LoadToken reads the token of account and rejects expired tokens.
func LoadToken(ctx context.Context, store tokenstore.Store, account string, now time.Time) (tokenstore.Token, error) {
	token, err := store.Load(ctx, account)
	if err != nil {
		return tokenstore.Token{}, fmt.Errorf("load token for %s: %w", account, err)
	}
	if token.Expired(now) {
		return tokenstore.Token{}, fmt.Errorf("%w: account %s, expired at %s", ErrTokenExpired, account, token.ExpiresAt.Format(time.RFC3339))
	}
	return token, nil
}

// NewUpstreamClient builds the upstream API client authenticated with token.
func NewUpstreamClient(cfg config.Config, token tokenstore.Token, logger zerolog.Logger) *connect.Client {
	return connect.New(cfg.UpstreamURL,
		connect.WithTimeout(cfg.UpstreamTimeout),
		connect.WithToken(token.AccessToken),
		connect.WithLogger(logger),
	)
}

// NewPublisher returns a Kafka publisher when events are enabled, otherwise a no-op one.
// The returned function closes the underlying writers.
func NewPublisher(cfg config.Config, logger zerolog.Logger) (events.Publisher, func() error) {
	if !cfg.PublishEvents {
		return events.NoopPublisher{}, func() error { return nil }
	}
	producer := events.NewKafkaProducer(cfg.KafkaBrokers)
	registry := events.NewSchemaRegistryClient(cfg.SchemaRegistryURL, cfg.UpstreamTimeout)
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Msg("publishing timeline events")
	return events.NewKafkaPublisher(producer, registry), producer.Close
}

// NewService assembles the timeline service.
func NewService(cfg config.Config, client *connect.Client, publisher events.Publisher, logger zerolog.Logger) *timeline.Service {
	return timeline.NewService(client, client,
		timeline.ServiceConfig{
			PageSize:    cfg.PageSize,
			Concurrency: cfg.ConnectionConcurrency,
		},
		timeline.WithLogger(logger),
		timeline.WithPublisher(publisher),
	)
}
