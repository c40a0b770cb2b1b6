package timeline

import (
	"errors"
	"fmt"
)

// UnavailableMarker is recorded against a connection whose activities could not be
// fetched or whose profile could not be resolved.
const UnavailableMarker = "_error_fetching_activities"

// ErrUnknownConnection is matched by every LookupError.
var ErrUnknownConnection = errors.New("unknown connection")

// FetchError reports a transport or protocol failure while reading an account's timeline.
type FetchError struct {
	Account string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch activities for %s: %v", e.Account, e.Err)
}

// Unwrap returns the upstream failure.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// LookupError reports a requested connection missing from the primary's directory.
type LookupError struct {
	Account string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownConnection, e.Account)
}

// Is lets errors.Is(err, ErrUnknownConnection) match.
func (e *LookupError) Is(target error) bool {
	return target == ErrUnknownConnection
}
