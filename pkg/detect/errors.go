package detect

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("detect: API key required")

	// ErrNoModel is returned when a model path is required but missing.
	ErrNoModel = errors.New("detect: model path required")

	// ErrBackendUnavailable is returned when no backend is configured.
	ErrBackendUnavailable = errors.New("detect: backend unavailable")
)

// APIError represents an error response from a hosted inference API.
type APIError struct {
	StatusCode int
	Message    string
	Backend    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("detect [%s]: API error %d: %s", e.Backend, e.StatusCode, e.Message)
}

// IsRetryable returns true if the request should be retried.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// BackendError wraps an error with backend context.
type BackendError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("detect [%s]: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with backend context.
func WrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Err: err}
}
