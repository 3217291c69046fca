// Package apperr is the error taxonomy shared by the REST and RPC surfaces.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindUnknownReference
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnknownReference:
		return "unknown_reference"
	default:
		return "internal"
	}
}

// Error carries a kind, a message safe to show clients, and the cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string) error {
	return &Error{Kind: KindInvalid, Msg: msg}
}

func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string, cause error) error {
	return &Error{Kind: KindUnauthorized, Msg: msg, Err: cause}
}

func UnknownReference(msg string) error {
	return &Error{Kind: KindUnknownReference, Msg: msg}
}

func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: cause}
}

// KindOf returns KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage never leaks the cause of internal errors.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal error"
	}
	return e.Msg
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalid, KindUnknownReference:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case KindInvalid, KindUnknownReference:
		return codes.InvalidArgument
	case KindUnauthorized:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
