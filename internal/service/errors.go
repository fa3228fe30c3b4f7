package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Transport maps each kind to a status code.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindPersistenceFailure:
		return "PERSISTENCE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Error is the only error type services hand to transport.
// Message is safe to show to clients; Err is the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func invalidInput(message string, cause error) *Error {
	return newError(KindInvalidInput, message, cause)
}

func unauthenticated(message string) *Error {
	return newError(KindUnauthenticated, message, nil)
}

func forbidden(message string) *Error {
	return newError(KindForbidden, message, nil)
}

func notFound(message string, cause error) *Error {
	return newError(KindNotFound, message, cause)
}

func conflict(message string, cause error) *Error {
	return newError(KindConflict, message, cause)
}

// persistenceFailure hides the cause behind a generic message
func persistenceFailure(cause error) *Error {
	return newError(KindPersistenceFailure, "internal server error", cause)
}

// KindOf returns the kind of err, treating anything that is not a
// service error as a persistence failure
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistenceFailure
}

// MessageOf returns the client-facing message for err
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return persistenceFailure(nil).Message
}
