package providers

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound reports a missing profile or preferences row.
	ErrNotFound = errors.New("remote: not found")
	// ErrUnauthenticated reports a missing or rejected access token.
	ErrUnauthenticated = errors.New("remote: unauthenticated")
	// ErrProviderUnavailable is returned when a collaborator is not configured.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// APIError is an error payload returned by an upstream service.
type APIError struct {
	Upstream   string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream error"
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status=%d)", e.Upstream, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Upstream, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError attempts to unwrap an error into an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// RateLimitError captures rate limit responses from upstream services.
type RateLimitError struct {
	Upstream   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
