package jackett

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrNotConfigured = errors.New("jackett is not configured")
	ErrInvalidURL    = errors.New("invalid jackett URL")
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// Connection errors
	ErrConnectionFailed  = errors.New("jackett connection failed")
	ErrConnectionTimeout = errors.New("jackett connection timed out")

	// Response errors
	ErrUpstreamError     = errors.New("jackett returned an error response")
	ErrMalformedResponse = errors.New("jackett returned a malformed response")
)

// JackettError wraps an error with additional context.
type JackettError struct {
	Op      string // Operation that failed (e.g., "search", "indexers")
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *JackettError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("jackett %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("jackett %s: %v", e.Op, e.Err)
}

func (e *JackettError) Unwrap() error {
	return e.Err
}

// WrapError creates a JackettError wrapping the given error.
func WrapError(op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &JackettError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

// IsConnectionError returns true if the error is a connection-related error.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrConnectionTimeout)
}
