package postprocess

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidInput is matched by every error caused by an empty or malformed raw
// tensor or by an impossible layout.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why a raw tensor was rejected.
type InputError struct {
	// Reason is a human readable description of the problem.
	Reason string
	// Shape is the offending tensor shape, if any.
	Shape []int64
}

func (e *InputError) Error() string {
	if len(e.Shape) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s (shape %v)", ErrInvalidInput, e.Reason, e.Shape)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(shape []int64, format string, args ...interface{}) error {
	return &InputError{Reason: fmt.Sprintf(format, args...), Shape: shape}
}
