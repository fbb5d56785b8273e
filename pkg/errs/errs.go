// Package errs defines the error taxonomy shared by services and handlers.
// Every failure that crosses the request boundary carries a stable code that
// maps to exactly one HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

type Error struct {
	Code   Code
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(detail string) *Error {
	return &Error{Code: CodeValidation, Detail: detail}
}

func Unauthorized(detail string) *Error {
	return &Error{Code: CodeUnauthorized, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Code: CodeForbidden, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Code: CodeConflict, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Code: CodeNotFound, Detail: detail}
}

// Internal wraps a lower-level failure. The cause is kept for logs; only the
// detail string is shown to callers.
func Internal(detail string, cause error) *Error {
	return &Error{Code: CodeInternal, Detail: detail, cause: cause}
}

// CodeOf extracts the taxonomy code from err. Unclassified errors are
// reported as internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// DetailOf returns the user-visible detail for err. Unclassified errors get a
// generic message so driver internals never leak to clients.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal server error"
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
