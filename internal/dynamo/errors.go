package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrValidation marks user input that cannot start a session.
	ErrValidation = errors.New("dynamo: invalid parameters")

	// ErrDegenerateFragment indicates an impact force that cannot be split
	// logarithmically (force <= 1, NaN or Inf on the multi-fragment branch).
	ErrDegenerateFragment = errors.New("dynamo: degenerate fragmentation input")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
