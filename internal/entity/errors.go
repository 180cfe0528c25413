package entity

import (
	"errors"
	"fmt"
)

// ErrCoefficientArity is returned when a material or boundary coefficient is
// neither a scalar nor a 3-vector.
var ErrCoefficientArity = errors.New("coefficient must be a scalar or a 3-vector")

// ErrUnknownProblemType is returned for a problem type outside the four
// supported variants.
var ErrUnknownProblemType = errors.New("unknown problem type")

// ConflictError reports two mutually exclusive parameter groups that were
// both supplied to the same builder.
type ConflictError struct {
	Entity string
	First  string
	Second string
}

// Error implements the error interface for ConflictError.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s and %s are mutually exclusive", e.Entity, e.First, e.Second)
}
