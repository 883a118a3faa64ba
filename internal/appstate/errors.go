package appstate

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before anything was persisted.
type ValidationError struct {
	// Op is the mutation that rejected the input.
	Op string

	// Err describes what was wrong.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op string, err error) error {
	return &ValidationError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
