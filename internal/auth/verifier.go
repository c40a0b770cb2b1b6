package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is matched by every verification failure.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// scopeClaim accepts both the space separated OAuth form and a JSON array.
type scopeClaim []string

func (s *scopeClaim) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = strings.Fields(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("scope claim: %w", err)
	}
	*s = list
	return nil
}

type timelineClaims struct {
	jwt.RegisteredClaims
	Scope       scopeClaim `json:"scope,omitempty"`
	Connections []string   `json:"connections,omitempty"`
}

// Verifier checks HS256 tokens minted by the identity service for the timeline API.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier returns a Verifier accepting tokens signed with secret and issued by issuer.
// Tokens must carry a subject and an expiry.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithIssuer(issuer),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

// Verify turns a raw bearer token into a Caller.
func (v *Verifier) Verify(raw string) (*Caller, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	var claims timelineClaims
	if _, err := v.parser.ParseWithClaims(raw, &claims, v.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	grants := make([]string, 0, len(claims.Connections))
	for _, c := range claims.Connections {
		grants = append(grants, strings.TrimSpace(c))
	}
	return NewCaller(claims.Subject, claims.ExpiresAt.Time, claims.Scope, grants), nil
}

func (v *Verifier) key(*jwt.Token) (any, error) {
	return v.secret, nil
}
