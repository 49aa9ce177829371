// Package errs defines the error taxonomy shared by the workflow engine and its adapters.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindNotFound
	KindInvalidState
	KindDependencyFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindDependencyFailure:
		return "dependency failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure with a human readable reason.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Err    error
}

// Sentinels for errors.Is comparisons. Only Kind is compared.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrDependencyFailure = &Error{Kind: KindDependencyFailure}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Reason != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a classified error.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Unauthorized is shorthand for New(KindUnauthorized, ...).
func Unauthorized(op, format string, args ...any) *Error {
	return New(KindUnauthorized, op, format, args...)
}

// NotFound is shorthand for New(KindNotFound, ...).
func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, format, args...)
}

// InvalidState is shorthand for New(KindInvalidState, ...).
func InvalidState(op, format string, args ...any) *Error {
	return New(KindInvalidState, op, format, args...)
}

// Wrap classifies err as a dependency failure unless it already carries a kind.
// A nil err returns nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: KindDependencyFailure, Op: op, Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}
