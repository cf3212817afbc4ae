package model

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid input")

type InputKind string

const (
	KindInterval  InputKind = "interval"
	KindOperation InputKind = "operation"
)

// InputError describes an interval or operation that breaks a scheduling
// precondition. Step is -1 for intervals.
type InputError struct {
	Kind   InputKind
	Index  int
	Step   int
	Reason string
}

func (e *InputError) Error() string {
	if e.Kind == KindOperation {
		return fmt.Sprintf("%s: job %d step %d: %s", ErrInvalidInput, e.Index, e.Step, e.Reason)
	}
	return fmt.Sprintf("%s: %s %d: %s", ErrInvalidInput, e.Kind, e.Index, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
