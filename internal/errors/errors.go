// Package errors defines the coded error taxonomy shared by the archive,
// the paste client and the command handlers.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown      = "UNKNOWN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeSelector     = "SELECTOR"
	CodeDateParse    = "DATE_PARSE"
	CodeUpstream     = "UPSTREAM"
	CodeDatabase     = "DATABASE"
	CodeConfig       = "CONFIG"
)

// ApplicationError is implemented by every coded error.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is a coded error with an optional cause.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

func NewUnauthorizedError(message string) error {
	return newError(CodeUnauthorized, message, nil)
}

func NewSelectorError(message string) error {
	return newError(CodeSelector, message, nil)
}

func NewDateParseError(message string, cause error) error {
	return newError(CodeDateParse, message, cause)
}

// NewUpstreamError wraps failures of the paste service or the Bot API.
func NewUpstreamError(message string, cause error) error {
	return newError(CodeUpstream, message, cause)
}

func NewDatabaseError(message string, cause error) error {
	return newError(CodeDatabase, message, cause)
}

func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}
