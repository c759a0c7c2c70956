// Package errors provides structured error types for popdyn.
//
// Error codes let the CLI, the HTTP API and library callers handle failures
// the same way: the API maps codes to status codes, the CLI prints the
// user-facing message, and callers branch with [Is].
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - NOT_FOUND: a requested resource does not exist
//   - STORAGE_*: repository and cache backend failures
//   - INTERNAL_ERROR: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimensions, "width must be positive, got %v", w)
//	if errors.Is(err, errors.ErrCodeInvalidDimensions) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "load items")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidWeight     Code = "INVALID_WEIGHT"
	ErrCodeInvalidGroupBy    Code = "INVALID_GROUP_BY"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPanel      Code = "INVALID_PANEL"
	ErrCodeInvalidDataset    Code = "INVALID_DATASET"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsValidation reports whether err carries one of the INVALID_* codes.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDimensions, ErrCodeInvalidWeight,
		ErrCodeInvalidGroupBy, ErrCodeInvalidFormat, ErrCodeInvalidPanel,
		ErrCodeInvalidDataset:
		return true
	}
	return false
}
