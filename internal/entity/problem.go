package entity

import (
	"fmt"
	"strings"

	"github.com/vk/palacegrid/internal/opt"
)

// ProblemType selects the physics of the simulation and, with it, the only
// legal solver block.
type ProblemType string

const (
	Electrostatic ProblemType = "Electrostatic"
	Magnetostatic ProblemType = "Magnetostatic"
	Eigenmode     ProblemType = "Eigenmode"
	Driven        ProblemType = "Driven"
)

// ProblemTypes lists every supported problem type.
var ProblemTypes = []ProblemType{Electrostatic, Magnetostatic, Eigenmode, Driven}

// ParseProblemType resolves a problem type name case-insensitively.
func ParseProblemType(s string) (ProblemType, error) {
	for _, t := range ProblemTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownProblemType, s)
}

const (
	defaultVerbose = 2
	defaultOutput  = "sim_output"
)

// ProblemInput declares the Problem section.
type ProblemInput struct {
	Type    ProblemType
	Verbose opt.Opt[int]
	Output  opt.Opt[string]
}

// Problem is the immutable Problem section of a document.
type Problem struct {
	Type    ProblemType
	payload Payload
}

// Payload returns the ordered section content.
func (p Problem) Payload() Payload { return p.payload }

// NewProblem builds the Problem section. Verbose defaults to 2 and Output to
// "sim_output".
func NewProblem(in ProblemInput) (Problem, error) {
	t, err := ParseProblemType(string(in.Type))
	if err != nil {
		return Problem{}, err
	}
	var p Payload
	p = p.put("Type", t)
	p = p.put("Verbose", in.Verbose.Or(defaultVerbose))
	p = p.put("Output", in.Output.Or(defaultOutput))
	return Problem{Type: t, payload: p}, nil
}
