// Package apperr classifies failures into the kinds the HTTP surface maps to statuses.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	Internal Kind = iota
	NotFound
	BadRequest
	NotConfigured
	UpstreamFailure
)

// String returns the machine-readable code used in error envelopes.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	case NotConfigured:
		return "not_configured"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return "internal_error"
	}
}

// Error is a classified error.
//
// Status is only meaningful for UpstreamFailure, where it carries the status the
// upstream service answered with (zero when the call never got a response).
type Error struct {
	Kind   Kind
	Msg    string
	Status int
	Err    error
}

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns an Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Upstream returns an UpstreamFailure carrying the upstream status and body.
func Upstream(status int, body string) *Error {
	return &Error{Kind: UpstreamFailure, Msg: body, Status: status}
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg == "" {
			return e.Err.Error()
		}
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so package level
// sentinels built with New work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case NotFound:
		return http.StatusNotFound
	case BadRequest:
		return http.StatusBadRequest
	case NotConfigured:
		return http.StatusNotImplemented
	case UpstreamFailure:
		if e.Status >= http.StatusBadRequest && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text of err. Internal errors are masked.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return http.StatusText(http.StatusInternalServerError)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Error()
}
