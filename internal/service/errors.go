package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrMissingAPIKey      = errors.New("ANTHROPIC_API_KEY is not configured")
)

// UpstreamError reports a failed call to the vision model. StatusCode is zero
// when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("upstream returned status %d: %s: %v", e.StatusCode, e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the call may succeed if repeated
func (e *UpstreamError) Retryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, ErrMissingAPIKey)
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}
