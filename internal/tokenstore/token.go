// Package tokenstore persists upstream OAuth tokens per account.
package tokenstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrTokenNotFound indicates no token is stored for the account.
var ErrTokenNotFound = errors.New("token not found")

// ErrInvalidToken indicates a token without an access token.
var ErrInvalidToken = errors.New("token has no access token")

// Token is an upstream OAuth bearer token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token is no longer usable at now. A zero expiry never expires.
func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// Validate checks the token carries an access token.
func (t Token) Validate() error {
	if strings.TrimSpace(t.AccessToken) == "" {
		return ErrInvalidToken
	}
	return nil
}

// Store loads and saves tokens keyed by account.
type Store interface {
	Load(ctx context.Context, account string) (Token, error)
	Save(ctx context.Context, account string, token Token) error
}
