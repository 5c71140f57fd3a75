// Package domainerrors provides coded errors for the domain layer.
//
// Stores report infrastructure facts via pkg/platform/sentinel; services
// translate those facts (and their own validation results) into coded
// errors so transport can map them onto HTTP statuses without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code enumerates the failure classes the domain can report.
type Code string

const (
	// CodeBadRequest marks rejected input: a missing, malformed, or
	// wrong-typed payload field.
	CodeBadRequest Code = "bad_request"
	// CodeConflict marks a store-level uniqueness violation.
	CodeConflict Code = "conflict"
	// CodeNotFound marks a lookup that matched nothing.
	CodeNotFound Code = "not_found"
	// CodeInternal marks unexpected faults.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It optionally wraps a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Message returns the domain message of err, or a generic fallback when err
// is not a coded error. Transport uses this to avoid leaking internals.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
