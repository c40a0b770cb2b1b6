// Package auth verifies bearer tokens issued to timeline API callers and records which
// connection timelines each caller may aggregate.
package auth

import (
	"context"
	"slices"
	"time"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	Subject string
	Expiry  time.Time
	// Grants lists the connections the caller may aggregate. Empty grants every connection
	// visible to the primary account.
	Grants []string
	scopes []string
}

// NewCaller builds a Caller. Scopes and grants are de-duplicated, order kept.
func NewCaller(subject string, expiry time.Time, scopes, grants []string) *Caller {
	return &Caller{
		Subject: subject,
		Expiry:  expiry,
		Grants:  compact(grants),
		scopes:  compact(scopes),
	}
}

// Can reports whether the caller holds scope.
func (c *Caller) Can(scope string) bool {
	return c != nil && slices.Contains(c.scopes, scope)
}

// MayRead reports whether the caller may aggregate the timeline of connection.
func (c *Caller) MayRead(connection string) bool {
	if c == nil {
		return false
	}
	return len(c.Grants) == 0 || slices.Contains(c.Grants, connection)
}

// Denied returns the requested connections outside the caller's grants, in request order.
func (c *Caller) Denied(requested []string) []string {
	var denied []string
	for _, name := range requested {
		if !c.MayRead(name) {
			denied = append(denied, name)
		}
	}
	return denied
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

type callerKey struct{}

// NewContext returns a copy of ctx carrying caller.
func NewContext(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by NewContext.
func CallerFrom(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(*Caller)
	return caller, ok && caller != nil
}
