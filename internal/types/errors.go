package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for knowledge-graph errors.
type ErrorCode string

// Load-time error codes
const (
	MALFORMED_RECORD     ErrorCode = "MALFORMED_RECORD"
	CONFLICTING_IDENTITY ErrorCode = "CONFLICTING_IDENTITY"
)

// Query-time error codes
const (
	STORE_UNAVAILABLE ErrorCode = "STORE_UNAVAILABLE"
	INVALID_PARAMETER ErrorCode = "INVALID_PARAMETER"
	UNKNOWN_TOOL      ErrorCode = "UNKNOWN_TOOL"
	TIMEOUT           ErrorCode = "TIMEOUT"
)

// Error represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var kgErr *Error
	if errors.As(target, &kgErr) {
		return e.Code == kgErr.Code
	}
	return false
}

// NewError creates a new non-retryable Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable Error with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable Error that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns the empty string if the chain contains no structured Error.
func CodeOf(err error) ErrorCode {
	var kgErr *Error
	if errors.As(err, &kgErr) {
		return kgErr.Code
	}
	return ""
}
