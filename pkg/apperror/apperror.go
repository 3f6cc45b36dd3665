package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigurationError means required deployment settings are missing.
// Retrying will not help.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "not configured: missing " + strings.Join(e.Missing, ", ")
}

// ValidationError reports caller-supplied data that failed a shape check.
// It is always raised before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Msg
}

// UploadError carries the media host's status and response body.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %d %s", e.Status, e.Body)
}

// PersistenceError wraps a document store failure.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Persistence wraps err as a PersistenceError for op, passing nil through.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Cause: err}
}

// HTTPStatus maps an error category to the response status handlers use.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ce *ConfigurationError
		ue *UploadError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable
	case errors.As(err, &ue):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
