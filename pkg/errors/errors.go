// Package errors provides structured error types for mvnbox.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the libraries
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the failure taxonomy of the build sandbox:
//   - INVALID_INPUT, NOT_CONFIGURED: configuration errors, raised before any side effect
//   - ENVIRONMENT: the sandbox environment could not be assembled
//   - EXECUTION: the wrapped build tool failed or could not be invoked
//   - RESOLUTION: a matching module was found but its content was unusable
//   - IO_ERROR, NETWORK_ERROR, NOT_FOUND: transport and catalog failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "blank goal")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExecution, origErr, "build in %s failed", dir)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeNotConfigured Code = "NOT_CONFIGURED"

	// Sandbox errors
	ErrCodeEnvironment Code = "ENVIRONMENT"
	ErrCodeExecution   Code = "EXECUTION"

	// Version resolution errors
	ErrCodeResolution Code = "RESOLUTION"

	// Transport errors
	ErrCodeIO       Code = "IO_ERROR"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeNotFound Code = "NOT_FOUND"

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
// Only the outermost *Error is consulted.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsConfiguration reports whether err is a configuration error, i.e. one
// raised before any side effect took place.
func IsConfiguration(err error) bool {
	c := GetCode(err)
	return c == ErrCodeInvalidInput || c == ErrCodeNotConfigured
}
