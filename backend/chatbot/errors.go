package chatbot

import (
	"errors"
	"fmt"
)

var (
	ErrMissingMessage      = errors.New("missing message")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("only teachers can create courses")
	ErrDuplicateGeneration = errors.New("identical course generation already in progress")
	// ErrAnswerFailed wraps upstream failures on the generic answer path.
	ErrAnswerFailed = errors.New("ai call failed")
)

// FormatError reports a course payload that does not follow PayloadFormat.
type FormatError struct {
	Hint string
}

func (e *FormatError) Error() string {
	return e.Hint
}

// GenerationError records the stage at which course generation stopped.
type GenerationError struct {
	Stage  Stage
	Lesson int // 1-based, zero outside the lesson loop
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Lesson > 0 {
		return fmt.Sprintf("%s (lesson %d): %v", e.Stage, e.Lesson, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
