package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when a task name has no configuration.
	ErrConfigNotFound = errors.New("generation: task config not found")
	// ErrGenerationFailed marks every provider-side failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResponse is the cause recorded when the provider returns no text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Error is a GenerationFailed error. It matches both ErrGenerationFailed and
// the underlying provider error under errors.Is.
type Error struct {
	Task string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation failed for task %s: %v", e.Task, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// Details returns the provider message carried by the error.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
