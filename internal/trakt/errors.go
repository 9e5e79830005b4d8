package trakt

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrNotConfigured = errors.New("trakt is not configured")
	ErrMissingToken  = errors.New("trakt refresh token is missing")
	ErrMissingClient = errors.New("trakt client credentials are missing")

	// Auth errors
	ErrAuthFailed = errors.New("trakt authentication failed")

	// Connection errors
	ErrConnectionFailed  = errors.New("trakt connection failed")
	ErrConnectionTimeout = errors.New("trakt connection timed out")

	// Response errors
	ErrMalformedResponse = errors.New("trakt returned a malformed response")
)

// TraktError wraps an error with additional context.
type TraktError struct {
	Op      string // Operation that failed (e.g., "refresh", "watchlist", "sync")
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *TraktError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("trakt %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("trakt %s: %v", e.Op, e.Err)
}

func (e *TraktError) Unwrap() error {
	return e.Err
}

// WrapError creates a TraktError wrapping the given error.
func WrapError(op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &TraktError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

// IsAuthError returns true if the error indicates failed authentication.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrMissingToken)
}
