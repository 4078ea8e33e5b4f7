package finance

import (
	"errors"
	"fmt"
)

// Business rule failures are returned as values, never panics. Callers match
// with errors.Is and map to transport-level responses at the boundary.
var (
	// ErrValidation covers malformed or out-of-range input, such as a
	// negative payment amount or an installment count beyond the
	// regulatory maximum.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a status change is attempted
	// from a terminal or disallowed state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrComplianceViolation is returned when a recovery step would break
	// the payment-plan compliance rules.
	ErrComplianceViolation = errors.New("compliance violation")

	// ErrNotFound is returned when a referenced record does not resolve.
	ErrNotFound = errors.New("record not found")
)

// ComplianceError carries the human-readable reason a recovery step was
// refused, so callers can choose to surface it as a warning or a hard block.
type ComplianceError struct {
	Reason string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("compliance violation: %s", e.Reason)
}

// Is makes errors.Is(err, ErrComplianceViolation) match.
func (e *ComplianceError) Is(target error) bool {
	return target == ErrComplianceViolation
}
