package llm

import (
	"errors"
	"fmt"
)

// Error kinds callers can match with errors.Is. Rate limits are retryable;
// bad requests and auth failures are not.
var (
	ErrRateLimited     = errors.New("rate limited")
	ErrBadRequest      = errors.New("bad request")
	ErrAuthentication  = errors.New("authentication failed")
	ErrUnknownProvider = errors.New("unknown LLM provider")
	ErrEmptyResponse   = errors.New("provider returned no choices")
	ErrMissingAPIKey   = errors.New("API key environment variable not set")
)

// APIError carries the provider's HTTP status and body, wrapped around one
// of the error kinds above.
type APIError struct {
	Kind       error
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LLM API error (status %d): %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}
