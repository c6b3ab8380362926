package inference

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrEmptyFrame is returned when Analyze receives an empty frame.
	ErrEmptyFrame = errors.New("inference: empty frame")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("inference: unknown backend")

	// ErrBackendUnavailable is returned when no classifier is configured.
	ErrBackendUnavailable = errors.New("inference: backend unavailable")

	// ErrModelNotFound is returned when a local model file is missing.
	ErrModelNotFound = errors.New("inference: model file not found")
)

// ClassifierError wraps a failure inside a classifier backend.
// The monitor loop logs these and carries on with zero detections.
type ClassifierError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *ClassifierError) Error() string {
	return fmt.Sprintf("inference [%s]: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with backend context.
func WrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClassifierError
	if errors.As(err, &ce) {
		return err
	}
	return &ClassifierError{Backend: backend, Err: err}
}

// APIError represents an error response from the DeepFace service.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the service.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ChainError aggregates errors from all classifiers in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "inference chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("inference chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("inference chain: all %d classifiers failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
