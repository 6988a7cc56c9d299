package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store and pipeline failures so callers can map
// them to exit codes and HTTP statuses without string matching.
type ErrorKind int

const (
	// KindValidation indicates input that violates an artifact invariant.
	KindValidation ErrorKind = iota
	// KindNotFound indicates a missing artifact id.
	KindNotFound
	// KindConflict indicates a uniqueness or lifecycle rule violation.
	KindConflict
	// KindIO indicates a file read/write/rename failure.
	KindIO
	// KindCorruption indicates unparseable JSON or an unsupported schema version.
	KindCorruption
	// KindUnavailable indicates an external collaborator failure or timeout.
	KindUnavailable
	// KindCancelled indicates the caller cancelled before completion.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindIO:
		return "io"
	case KindCorruption:
		return "corruption"
	case KindUnavailable:
		return "unavailable"
	case KindCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Error is the tagged error returned by the store, validator, and search
// layers. It wraps an optional cause for errors.Is/As chains.
type Error struct {
	Kind    ErrorKind
	Message string
	Path    string // offending file for IO/Corruption errors
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match sentinel errors.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Kind == e.Kind && (te.Message == "" || te.Message == e.Message)
	}
	return false
}

// Validationf builds a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error for an artifact id.
func NotFound(kind, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// IOError wraps a file operation failure with its path.
func IOError(path string, err error) *Error {
	return &Error{Kind: KindIO, Message: err.Error(), Path: path, Err: err}
}

// Corruptionf builds a corruption error for a file.
func Corruptionf(path, format string, args ...any) *Error {
	return &Error{Kind: KindCorruption, Message: fmt.Sprintf(format, args...), Path: path}
}

// Unavailablef builds an unavailable error for a collaborator failure.
func Unavailablef(format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Cancelled wraps a context cancellation.
func Cancelled(err error) *Error {
	return &Error{Kind: KindCancelled, Message: "operation cancelled", Err: err}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to KindIO
// for untagged errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
