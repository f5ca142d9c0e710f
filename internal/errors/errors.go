package errors

import (
	"errors"
	"fmt"
)

// This package defines a centralized set of sentinel errors for the application.
// Services return these (usually wrapped with fmt.Errorf and %w) and the API
// layer uses errors.Is() to map them to HTTP responses and user-facing messages.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the client is not allowed to perform the
	// requested action in its current state.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrInternal signifies an unexpected error on the server.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")

	// ErrDuplicateUsername is returned by registration when the username is taken.
	// It is a conflict, so errors.Is(err, ErrConflict) also holds.
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrConflict)

	// ErrAuthFailure covers both an unknown username and a wrong password.
	// Callers must not be able to tell the two apart.
	ErrAuthFailure = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when an action needs a logged-in client.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrCompletionService signifies that the completion call failed or its
	// stream terminated abnormally. The turn is not persisted.
	ErrCompletionService = errors.New("completion service error")

	// ErrPersistence wraps any failure of the relational store.
	ErrPersistence = errors.New("persistence error")
)
