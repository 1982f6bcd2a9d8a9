package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks input rejected before it reaches the store.
// Callers wrap it with the field detail via Invalid.
var ErrValidation = errors.New("validation failed")

// Invalid returns an ErrValidation carrying a human-readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
