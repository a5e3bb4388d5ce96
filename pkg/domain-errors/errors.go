// Package derrors defines the coded domain error used across service
// boundaries. Services translate store sentinels and business-rule failures
// into these; the HTTP layer owns the code-to-status mapping.
package derrors

import (
	"errors"
	"fmt"
)

// Code is the wire-level status keyword carried by a domain error.
type Code string

const (
	CodeRecordNotFound  Code = "RECORD_NOT_FOUND"
	CodeAlreadyEnrolled Code = "ALREADY_ENROLLED"
	CodeIneligibleAge   Code = "INELIGIBLE_AGE"
	CodeEmailExists     Code = "EMAIL_EXISTS"
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
)

// Error is the single domain error type. Business-rule failures carry a
// specific Code; anything unexpected is wrapped with CodeInternal.
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

// New builds a domain error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for logging while keeping the code authoritative for callers.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err is (or wraps) a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for anything
// that is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
