package triage

import "fmt"

// ValidationError rejects a report whose coordinates cannot be used.
// Reports that fail validation must not be persisted.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
