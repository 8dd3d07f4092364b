package services

import (
	"errors"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/generation"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// UnavailableError reports a failed call to something outside the process
// (the generation endpoint, mostly). Nothing was changed.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string { return e.Message }

func (e *UnavailableError) Unwrap() error { return e.Err }

// notFound turns docstore.ErrNotFound into a NotFoundError with msg and
// passes every other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return &NotFoundError{Message: msg}
	}
	return err
}

// generationError classifies a failed generation call.
func generationError(err error) error {
	var unavailable *generation.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return &UnavailableError{Message: "The AI service is unavailable. Please try again later.", Err: err}
	case errors.Is(err, generation.ErrParse):
		return &UnavailableError{Message: "The AI service returned a response that could not be used.", Err: err}
	case errors.Is(err, generation.ErrEmptyPrompt):
		return &ValidationError{Fields: map[string]string{"prompt": "Nothing to send to the AI service"}}
	default:
		return err
	}
}
