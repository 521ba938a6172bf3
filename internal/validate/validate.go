// Package validate contains the numeric input checks shared by the
// calculation packages.
//
// The calculators are total over well-formed numbers: zero and boundary
// values produce degenerate-but-defined output. NaN or infinite input is
// the one thing rejected up front, so a malformed field fails immediately
// instead of propagating NaN through a 60-month projection loop.
package validate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the category error for malformed numeric input.
// Callers match it with errors.Is and inspect the field via FieldError.
var ErrInvalidInput = errors.New("invalid input")

// FieldError identifies the offending input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid input: field %q %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) work for FieldError.
func (e *FieldError) Unwrap() error { return ErrInvalidInput }

// Finite returns a FieldError when v is NaN or infinite.
func Finite(field string, v float64) error {
	if math.IsNaN(v) {
		return &FieldError{Field: field, Reason: "is NaN"}
	}
	if math.IsInf(v, 0) {
		return &FieldError{Field: field, Reason: "is infinite"}
	}
	return nil
}

// Positive returns a FieldError when v is not finite or not strictly positive.
func Positive(field string, v float64) error {
	if err := Finite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return &FieldError{Field: field, Reason: "must be > 0"}
	}
	return nil
}
