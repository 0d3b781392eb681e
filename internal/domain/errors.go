package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested batch or route does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed engine input: out-of-range coordinates,
// duplicate or empty stop identifiers, or invalid optimizer options.
// It is always surfaced to the caller and never repaired.
type ValidationError struct {
	StopID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.StopID != "" {
		return fmt.Sprintf("validation failed: stop %q: %s: %s", e.StopID, e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
