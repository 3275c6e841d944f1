package msg

import (
	"errors"
	"fmt"
)

// ErrLengthViolation marks an identifier or text field that exceeds its
// fixed byte limit. It is raised before any counter mutation, so a
// rejected encode never perturbs shared counter state.
var ErrLengthViolation = errors.New("field exceeds fixed length")

// LengthError carries the offending field and sizes
type LengthError struct {
	Field string
	Limit int
	Got   int
}

// Error implements error
func (e *LengthError) Error() string {
	return fmt.Sprintf("%s is %d bytes, limit %d", e.Field, e.Got, e.Limit)
}

// Unwrap lets errors.Is match ErrLengthViolation
func (e *LengthError) Unwrap() error {
	return ErrLengthViolation
}
