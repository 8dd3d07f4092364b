// Package generation talks to the hosted text-generation model and turns its
// free-text replies into quizzes, assignments and coding problems. Replies
// are untrusted: every parser either returns a complete, valid value or an
// error.
package generation

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrEmptyResponse = errors.New("model returned no text")
)

// Generator sends one prompt and returns the generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UnavailableError wraps a failed call to the generation endpoint.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation endpoint unavailable: %v", e.Err)
	}
	return "generation endpoint unavailable"
}

func (e *UnavailableError) Unwrap() error { return e.Err }
