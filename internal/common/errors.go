// Package common defines the error taxonomy shared by the store, service and
// handler layers. Callers should use errors.Is to match the sentinels and
// errors.As to recover the Kind of an error.
package common

import (
	"errors"
	"net/http"
)

// Kind classifies an error for conversion into an HTTP response.
type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindDuplicate      Kind = "DuplicateError"
	KindAuthentication Kind = "AuthenticationError"
	KindAuthorization  Kind = "AuthorizationError"
	KindNotFound       Kind = "NotFoundError"
	KindDependency     Kind = "DependencyError"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind and message, so
// that a freshly built Validation("x") matches another Validation("x").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind, keeping it in the chain.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

var (
	// auth
	ErrInvalidToken          = New(KindAuthentication, "Not authorized, token failed")
	ErrMissingToken          = New(KindAuthentication, "Not authorized, no token")
	ErrInvalidCredentials    = New(KindAuthentication, "Invalid email or password")
	ErrForbidden             = New(KindAuthorization, "Not authorized for this action")
	ErrInvalidOrExpiredToken = New(KindValidation, "Invalid or expired password reset token")

	// input
	ErrInvalidEmailFormat = New(KindValidation, "Please enter a valid email address")
	ErrMissingFields      = New(KindValidation, "Please enter all required fields")
	ErrInvalidInput       = New(KindValidation, "Invalid input")

	// store
	ErrDuplicateEmail = New(KindDuplicate, "Email already in use")
	ErrNotFound       = New(KindNotFound, "Not found")

	// dependencies
	ErrEmailDelivery = New(KindDependency, "Email could not be sent. Please try again later.")
	ErrInternal      = New(KindDependency, "Server error")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindDependency when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}
