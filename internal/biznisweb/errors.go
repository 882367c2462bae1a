package biznisweb

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is. Callers branch on these to
// decide between a structured "not found" payload, a configuration error, and
// a transport error.
var (
	// ErrMissingAPIToken means no credential is configured. It is raised
	// before any network attempt.
	ErrMissingAPIToken = errors.New("BIZNISWEB_API_TOKEN is not configured")

	// ErrOrderNotFound means the remote API answered normally but the
	// requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrRequestFailed covers network failures, non-2xx responses and
	// GraphQL-level errors. Not retried.
	ErrRequestFailed = errors.New("request failed")
)

// APIError wraps a failure of one GraphQL operation with context.
type APIError struct {
	Op  string // operation that failed, e.g. "biznisweb.ListOrders"
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err represents an absent entity rather than a
// hard failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsConfigurationError reports whether err is a configuration problem the
// operator must fix, as opposed to a transient transport failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingAPIToken)
}
