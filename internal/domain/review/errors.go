package review

import (
	"errors"
	"fmt"
)

// ErrNoUsableInput is returned when a request body yields no review text.
var ErrNoUsableInput = &ValidationError{
	Field:   "reviews",
	Message: `provide {"reviews":[{"text":"..."}]}, {"reviews":["..."]} or {"text":"..."}`,
}

// ErrInvalidLimits indicates chunk or normalization limits that cannot work.
var ErrInvalidLimits = errors.New("invalid limits")

// ValidationError represents a client-side input problem.
// It is never sent upstream and always maps to 400.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("no usable input in '%s': %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
