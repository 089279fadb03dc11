package entity

import "fmt"

// ValidationError marks a malformed signal or row. The affected item is
// skipped and counted rather than failing the batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
