// Package apperror defines the error taxonomy shared by the service and
// handler layers.
//
// Every error a service returns falls into one of these buckets:
//
//	ErrValidation       → bad input, rejected before the store is touched
//	ErrConflict         → a unique field (email, username) is already taken
//	ErrUnauthenticated  → bad credentials, bad/expired/absent token, vanished user
//	ErrNotFound         → missing resource, or a resource owned by someone else
//	ErrUnavailable      → an upstream dependency (the text generator) can't serve
//	anything else       → internal; logged in full, shown to the client as a generic 500
//
// The unauthenticated and not-found buckets carry fixed messages. Their
// callers never get to say WHY a check failed, so the two "no such user vs
// wrong password" and "not yours vs doesn't exist" cases look identical on
// the wire.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnavailable     = errors.New("unavailable")
)

// UnauthenticatedMessage is the only text a client ever sees for a failed
// credential or session check.
const UnauthenticatedMessage = "Could not validate credentials"

type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable, safe to show to clients
	Field   string // optional: input field the error is about
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource. The message names the resource kind
// only, never the id that was asked for.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that field already holds the submitted value for another
// record. HTTP handlers map this to 409 Conflict.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated returns the single, undifferentiated authentication
// failure. Callers log the specific cause themselves before returning it.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: UnauthenticatedMessage,
	}
}

// Unavailable reports that a dependency outside this service failed or
// isn't configured. HTTP handlers map this to 503.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}
