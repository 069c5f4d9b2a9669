// Package domainerrors defines caller-visible error codes. Services return these so
// transport layers can translate failures without inspecting error strings.
//
// Infrastructure facts (not found, unavailable) live in pkg/platform/sentinel and
// are translated into codes here at the service boundary.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for callers.
type Code string

const (
	// CodeMandatoryDataMissing means the root cadastre lookup failed or the parcel
	// identifier is malformed. No partial result exists.
	CodeMandatoryDataMissing Code = "mandatory_data_missing"
	CodeBadRequest           Code = "bad_request"
	CodeValidation           Code = "validation_error"
	CodeNotFound             Code = "not_found"
	CodeInternal             Code = "internal_error"
)

// Error carries a code, a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost coded error, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeMandatoryDataMissing:
		return http.StatusUnprocessableEntity
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
