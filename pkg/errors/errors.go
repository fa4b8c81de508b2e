// Package errors provides structured error types for gdpmap.
//
// The font metrics builder, the data loaders and the CLI report failures as
// [*Error] values carrying a machine-readable [Code]. Layout-time "no-fit"
// outcomes are never errors: a label that does not fit is simply omitted.
//
// # Error Codes
//
//   - CONFIGURATION: invalid build inputs (empty alphabet, bad ladder)
//   - ENVIRONMENT: no usable text measurement surface
//   - INVALID_*: malformed user input
//   - NOT_FOUND: missing data, node or cache entry
//   - NETWORK_ERROR: data fetch failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "font size ladder is empty")
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // abort metrics generation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Build-time errors
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeEnvironment   Code = "ENVIRONMENT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidData   Code = "INVALID_DATA"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the HTTP status the API server returns.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return 400
	case ErrCodeNotFound:
		return 404
	case ErrCodeNetwork:
		return 502
	default:
		return 500
	}
}
