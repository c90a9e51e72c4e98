package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusCode returns the HTTP status carried by err, or fallback when err is
// not an *Error.
func StatusCode(err error, fallback int) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return fallback
}

// CodeOf returns the machine code carried by err, or fallback.
func CodeOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return fallback
}

func Unauthorized() *Error {
	return New(http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid session"))
}

func Forbidden() *Error {
	return New(http.StatusForbidden, "forbidden", errors.New("forbidden"))
}
