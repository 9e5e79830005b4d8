package prowlarr

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrNotConfigured = errors.New("prowlarr is not configured")
	ErrInvalidURL    = errors.New("invalid prowlarr URL")
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// Connection errors
	ErrConnectionFailed  = errors.New("prowlarr connection failed")
	ErrConnectionTimeout = errors.New("prowlarr connection timed out")

	// Response errors
	ErrMalformedResponse = errors.New("prowlarr returned a malformed response")
	ErrNoIndexersEnabled = errors.New("no indexers enabled in prowlarr")

	// Rate limiting errors
	ErrRateLimited = errors.New("prowlarr rate limit exceeded")
)

// ProwlarrError wraps an error with additional context.
type ProwlarrError struct {
	Op      string // Operation that failed (e.g., "search", "indexers", "connect")
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *ProwlarrError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("prowlarr %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("prowlarr %s: %v", e.Op, e.Err)
}

func (e *ProwlarrError) Unwrap() error {
	return e.Err
}

// WrapError creates a ProwlarrError wrapping the given error.
func WrapError(op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &ProwlarrError{
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

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
