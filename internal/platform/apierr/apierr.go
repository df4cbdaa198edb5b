// Package apierr carries the pipeline's error taxonomy across package
// boundaries without callers needing to import net/http.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindUnsafeURL    Kind = "unsafe_url"
	KindTransport    Kind = "transport"
	KindParse        Kind = "parse"
	KindInternal     Kind = "internal"
)

type Error struct {
	Status int
	Code   string
	Kind   Kind
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
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, kind Kind, err error) *Error {
	return &Error{Status: status, Code: code, Kind: kind, Err: err}
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, KindNotFound, err)
}

func InvalidState(code string, err error) *Error {
	return New(http.StatusConflict, code, KindInvalidState, err)
}

func UnsafeURL(code string, err error) *Error {
	return New(http.StatusBadRequest, code, KindUnsafeURL, err)
}

func Transport(code string, err error) *Error {
	return New(http.StatusBadGateway, code, KindTransport, err)
}

func Parse(code string, err error) *Error {
	return New(http.StatusUnprocessableEntity, code, KindParse, err)
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, KindInternal, err)
}

// As reports whether err (or an error it wraps) is an *Error, writing it
// into target the way errors.As would.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}
