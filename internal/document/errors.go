package document

import (
	"fmt"
	"strings"

	"github.com/vk/palacegrid/internal/entity"
)

// TypeMismatchError is returned by AddSolver when the solver block does not
// match the document's problem type.
type TypeMismatchError struct {
	Expected entity.ProblemType
	Got      entity.ProblemType
}

// Error implements the error interface for TypeMismatchError.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("solver block %q does not match problem type; use a %s solver block", e.Got, e.Expected)
}

// ValidationError is returned when a document is serialized before every
// required section has been supplied.
type ValidationError struct {
	Missing []Section
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("document is incomplete, add the %s section(s)", strings.Join(names, ", "))
}
