// Package clierr defines structured error types shared by the core and the CLI.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for scripted consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants, uppercase and underscore-separated, stable across minor versions.
const (
	TaskNotFound       = "TASK_NOT_FOUND"
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreExists        = "STORE_ALREADY_EXISTS"
	InvalidInput       = "INVALID_INPUT"
	EmptyText          = "EMPTY_TEXT"
	InvalidTime        = "INVALID_TIME"
	InvalidImport      = "INVALID_IMPORT"
	InvalidTaskRef     = "INVALID_TASK_REF"
	AmbiguousTaskRef   = "AMBIGUOUS_TASK_REF"
	UnknownMode        = "UNKNOWN_MODE"
	AlreadyCompleted   = "ALREADY_COMPLETED"
	NotCompleted       = "NOT_COMPLETED"
	NoChanges          = "NO_CHANGES"
	ConfirmationReq    = "CONFIRMATION_REQUIRED"
	PersistenceFailed  = "PERSISTENCE_FAILED"
	NothingToPreselect = "NOTHING_TO_PRESELECT"
	InternalError      = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err reachable through errors.Is/As.
func Wrap(code string, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Code: code, Message: msg, cause: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err rejects user input without mutating state.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case InvalidInput, EmptyText, InvalidTime, InvalidImport, InvalidTaskRef, AmbiguousTaskRef, UnknownMode:
		return true
	}
	return false
}

// IsPersistence reports whether err is a failed write to the backing store.
// In-memory state is still valid when this is true.
func IsPersistence(err error) bool {
	return CodeOf(err) == PersistenceFailed
}

// IsNotFound reports whether err refers to a stale or unknown task id.
func IsNotFound(err error) bool {
	return CodeOf(err) == TaskNotFound
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
