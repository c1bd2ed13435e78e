// Package apperr defines the error kinds shared by the auth and chat layers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InvalidInput Kind = "INVALID_INPUT"
	Unauthorized Kind = "UNAUTHORIZED"
	Forbidden    Kind = "FORBIDDEN"
	NotFound     Kind = "NOT_FOUND"
	Conflict     Kind = "CONFLICT"
	Internal     Kind = "INTERNAL"
)

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an error of the given kind. err may be nil.
func New(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// Wrap marks err as an internal failure.
func Wrap(err error, reason string) *Error {
	return &Error{Kind: Internal, Reason: reason, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain.
// Errors that carry no kind are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ReasonOf returns the client-facing reason of err, or a generic text for
// internal failures.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Reason
	}
	return "Internal server error"
}
