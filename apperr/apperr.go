// Package apperr defines the closed set of error kinds the API can
// surface and their HTTP status mapping. Repository and blob-store
// faults are wrapped as Infrastructure and pass through unchanged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnauthorized Kind = iota
	KindBadCredential
	KindForbidden
	KindNotFound
	KindConflict
	KindLinkInvalid
	KindLinkExpired
	KindPasswordRequired
	KindPasswordIncorrect
	KindInfrastructure
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthorized(msg string) error      { return &Error{Kind: KindUnauthorized, Msg: msg} }
func BadCredential(msg string) error     { return &Error{Kind: KindBadCredential, Msg: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Msg: msg} }
func LinkInvalid(msg string) error       { return &Error{Kind: KindLinkInvalid, Msg: msg} }
func LinkExpired(msg string) error       { return &Error{Kind: KindLinkExpired, Msg: msg} }
func PasswordRequired(msg string) error  { return &Error{Kind: KindPasswordRequired, Msg: msg} }
func PasswordIncorrect(msg string) error { return &Error{Kind: KindPasswordIncorrect, Msg: msg} }

func Infrastructure(err error) error {
	return &Error{Kind: KindInfrastructure, Msg: "internal error", Err: err}
}

// KindOf reports the kind of err, defaulting unclassified errors to
// Infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadCredential:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindLinkInvalid:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindLinkExpired:
		return http.StatusGone
	case KindPasswordRequired:
		return http.StatusUnauthorized
	case KindPasswordIncorrect:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
