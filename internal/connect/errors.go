package connect

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-successful upstream response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d", e.Operation, e.StatusCode)
}

// IsUnauthorized reports whether err is an upstream 401 or 403, meaning the stored token
// must be refreshed.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}
