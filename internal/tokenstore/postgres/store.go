package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/timeline/internal/tokenstore"
)

const schema = `CREATE TABLE IF NOT EXISTS upstream_tokens (
    account TEXT PRIMARY KEY,
    access_token TEXT NOT NULL,
    refresh_token TEXT,
    expires_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store provides Postgres-backed token persistence.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the token table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Load returns the token stored for account.
func (s *Store) Load(ctx context.Context, account string) (tokenstore.Token, error) {
	const query = `SELECT access_token, refresh_token, expires_at FROM upstream_tokens WHERE account=$1`

	var (
		token     tokenstore.Token
		refresh   *string
		expiresAt *time.Time
	)
	err := s.pool.QueryRow(ctx, query, account).Scan(&token.AccessToken, &refresh, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return tokenstore.Token{}, tokenstore.ErrTokenNotFound
	}
	if err != nil {
		return tokenstore.Token{}, err
	}
	if refresh != nil {
		token.RefreshToken = *refresh
	}
	if expiresAt != nil {
		token.ExpiresAt = expiresAt.UTC()
	}
	return token, nil
}

// Save upserts the token for account.
func (s *Store) Save(ctx context.Context, account string, token tokenstore.Token) error {
	if err := token.Validate(); err != nil {
		return err
	}

	const upsert = `INSERT INTO upstream_tokens (account, access_token, refresh_token, expires_at, updated_at)
        VALUES ($1,$2,$3,$4,now())
        ON CONFLICT (account) DO UPDATE SET
            access_token=EXCLUDED.access_token,
            refresh_token=EXCLUDED.refresh_token,
            expires_at=EXCLUDED.expires_at,
            updated_at=now()`

	_, err := s.pool.Exec(ctx, upsert, account, token.AccessToken, nullIfEmpty(token.RefreshToken), nullIfZero(token.ExpiresAt))
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC()
}
