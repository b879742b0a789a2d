package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidInput marks a caller contract violation on a geometry or style
// argument (NaN or infinite numbers, negative step counts, non-positive sizes).
var ErrInvalidInput = errors.New("invalid input")

// ErrColorArity is returned when color arguments are neither a single name nor
// three numeric channels.
var ErrColorArity = errors.New("color expects one name or three channels")

// InputError describes which argument of which operation was rejected.
// It unwraps to ErrInvalidInput.
type InputError struct {
	Op    string
	Param string
	Value any
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v", e.Op, e.Param, e.Value)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
