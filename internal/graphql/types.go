package graphql

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no backend endpoint URL has been set.
// This is a configuration condition, not a transport failure, and callers are
// expected to reset to an explicit "not configured" state rather than report it
// as an error.
var ErrNotConfigured = errors.New("query backend not configured")

// ErrMissingData is returned when a response resolves without a data payload.
var ErrMissingData = errors.New("response contains no data payload")

// HTTPError represents a non-success HTTP response from the query backend
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// BackendError represents a non-empty top-level error list in an otherwise
// successful response. Message carries the first reported error verbatim.
type BackendError struct {
	Operation string
	Message   string
	Messages  []string
}

// Error returns the first backend-reported error message verbatim.
func (e *BackendError) Error() string {
	return e.Message
}
