package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the services. Every error returned from Render
// matches exactly one of them through errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidDocument = errors.New("invalid document")
	ErrEmptyDocument   = errors.New("empty document")
	ErrNarration       = errors.New("narration failed")
	ErrSynthesis       = errors.New("speech synthesis failed")
	ErrMux             = errors.New("clip muxing failed")
	ErrAssembly        = errors.New("video assembly failed")
	ErrPublish         = errors.New("publishing failed")
	ErrCompletion      = errors.New("completion failed")
)

var kinds = []error{
	ErrInvalidInput, ErrInvalidDocument, ErrEmptyDocument, ErrNarration,
	ErrSynthesis, ErrMux, ErrAssembly, ErrPublish, ErrCompletion,
}

// StageError carries the failing stage and slide alongside the error kind.
// Slide is -1 when the failure is not tied to a single slide.
type StageError struct {
	Kind  error
	Stage Stage
	Slide int
	Err   error
}

func (e *StageError) Error() string {
	if e.Slide >= 0 {
		return fmt.Sprintf("%s: %s (slide %d): %v", e.Stage, e.Kind, e.Slide, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageError(kind error, stage Stage, slide int, err error) error {
	return &StageError{Kind: kind, Stage: stage, Slide: slide, Err: err}
}

// InvalidInput builds an ErrInvalidInput error with a caller-facing message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// KindOf returns the error kind matched by err, or nil for unexpected errors.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
