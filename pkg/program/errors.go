package program

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation is returned when a step names no known operation.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidArguments is returned when a step has the wrong number or type
	// of arguments or options.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// StepError locates a failure inside a program.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
