// Package errors provides structured error types for topomap.
//
// Every failure that aborts a run carries a [Code] so the CLI can tell a
// broken CSV header apart from an unwritable output directory:
//   - SCHEMA_ERROR: a required CSV column is missing
//   - PARSE_ERROR: a timestamp or address could not be parsed
//   - EMPTY_INPUT: the log held no records (reported, not fatal)
//   - IO_ERROR: input unreadable or output unwritable
//   - INVALID_INPUT: bad options
//   - RENDER_ERROR: Graphviz or image encoding failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSchema, "missing columns: %s", cols)
//	if errors.Is(err, errors.ErrCodeSchema) {
//	    // Handle schema error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeSchema       Code = "SCHEMA_ERROR"
	ErrCodeParse        Code = "PARSE_ERROR"
	ErrCodeEmptyInput   Code = "EMPTY_INPUT"
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeRender       Code = "RENDER_ERROR"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// ExitCode maps an error to the process exit status used by the CLI.
// Schema and parse failures use 65 (EX_DATAERR), I/O failures 74 (EX_IOERR),
// bad options 64 (EX_USAGE) and everything else 1.
func ExitCode(err error) int {
	switch GetCode(err) {
	case ErrCodeSchema, ErrCodeParse:
		return 65
	case ErrCodeIO:
		return 74
	case ErrCodeInvalidInput:
		return 64
	default:
		return 1
	}
}
