// Package apperr defines the typed errors services return to handlers.
package apperr

import "net/http"

// Stable error codes surfaced in API responses.
const (
	CodeValidation         = 40001
	CodeDuplicateName      = 40002
	CodeReservedName       = 40003
	CodeEndpointTestFailed = 40004
	CodeUnauthenticated    = 40101
	CodeRateLimited        = 42901
	CodeNotFound           = 40404
	CodeInternal           = 50001
)

type Error struct {
	Status  int      `json:"-"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func Validation(message string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Details: details}
}

func DuplicateName(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeDuplicateName, Message: message}
}

func ReservedName(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeReservedName, Message: message}
}

func EndpointTestFailed(message string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeEndpointTestFailed, Message: message, Details: details}
}

func Unauthenticated(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// From normalizes any error into an *Error, wrapping unexpected ones as
// internal so raw details never leak into a response.
func From(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return Internal("An unexpected error occurred")
}
