// Package errors defines the typed errors shared by the content pipeline and
// the query API, and the mapping from error kind to HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeEmpty      ErrorType = "empty"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// OpeError is a structured error type with context.
type OpeError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *OpeError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *OpeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *OpeError with the same type and code.
func (e *OpeError) Is(target error) bool {
	var t *OpeError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext returns a copy of the error carrying an extra context entry.
// The receiver is left untouched so package-level sentinels stay shareable.
func (e *OpeError) WithContext(key string, value interface{}) *OpeError {
	cp := *e
	cp.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value

	return &cp
}

// NewValidationError creates an input-shape error.
func NewValidationError(code, message string) *OpeError {
	return &OpeError{Type: ErrorTypeValidation, Code: code, Message: message}
}

// NewNotFoundError creates a lookup-miss error.
func NewNotFoundError(code, message string) *OpeError {
	return &OpeError{Type: ErrorTypeNotFound, Code: code, Message: message}
}

// NewEmptyError creates an error for operations that need at least one record.
func NewEmptyError(code, message string) *OpeError {
	return &OpeError{Type: ErrorTypeEmpty, Code: code, Message: message}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *OpeError {
	return &OpeError{Type: ErrorTypeIO, Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *OpeError {
	return &OpeError{Type: ErrorTypeConfig, Code: code, Message: message, Cause: cause}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *OpeError {
	return &OpeError{Type: ErrorTypeInternal, Code: code, Message: message, Cause: cause}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not an
// *OpeError.
func TypeOf(err error) ErrorType {
	var oe *OpeError
	if errors.As(err, &oe) {
		return oe.Type
	}

	return ErrorTypeInternal
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound, ErrorTypeEmpty:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message of err. For an *OpeError this is
// its Message without code or cause.
func Message(err error) string {
	var oe *OpeError
	if errors.As(err, &oe) {
		return oe.Message
	}

	return err.Error()
}
