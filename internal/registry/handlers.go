package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/palacegrid/internal/entity"
)

// RegisteredBoundary pairs the HCL input struct of a boundary kind with the
// function that turns a decoded input into an entity record.
type RegisteredBoundary struct {
	NewInput  func() any
	InputType reflect.Type
	Build     func(input any) (entity.Boundary, error)
}

// RegisteredPostprocessing is the postprocessing counterpart of
// RegisteredBoundary.
type RegisteredPostprocessing struct {
	NewInput  func() any
	InputType reflect.Type
	Build     func(input any) (entity.Postprocessing, error)
}

// RegisteredSolver is the solver block counterpart of RegisteredBoundary.
// Kind is the problem type the block is legal for.
type RegisteredSolver struct {
	Kind      entity.ProblemType
	NewInput  func() any
	InputType reflect.Type
	Build     func(input any) (entity.SolverBlock, error)
}

// Boundary wraps a typed build function into a RegisteredBoundary.
func Boundary[T any](build func(*T) (entity.Boundary, error)) *RegisteredBoundary {
	return &RegisteredBoundary{
		NewInput:  func() any { return new(T) },
		InputType: reflect.TypeOf((*T)(nil)).Elem(),
		Build:     func(in any) (entity.Boundary, error) { return build(in.(*T)) },
	}
}

// Postprocessing wraps a typed build function into a RegisteredPostprocessing.
func Postprocessing[T any](build func(*T) (entity.Postprocessing, error)) *RegisteredPostprocessing {
	return &RegisteredPostprocessing{
		NewInput:  func() any { return new(T) },
		InputType: reflect.TypeOf((*T)(nil)).Elem(),
		Build:     func(in any) (entity.Postprocessing, error) { return build(in.(*T)) },
	}
}

// Solver wraps a typed build function into a RegisteredSolver.
func Solver[T any](kind entity.ProblemType, build func(*T) (entity.SolverBlock, error)) *RegisteredSolver {
	return &RegisteredSolver{
		Kind:      kind,
		NewInput:  func() any { return new(T) },
		InputType: reflect.TypeOf((*T)(nil)).Elem(),
		Build:     func(in any) (entity.SolverBlock, error) { return build(in.(*T)) },
	}
}

// RegisterBoundary registers the decoder for a boundary block label.
func (r *Registry) RegisterBoundary(label string, handler *RegisteredBoundary) {
	if _, exists := r.BoundaryRegistry[label]; exists {
		panic(fmt.Sprintf("boundary handler with label '%s' already registered", label))
	}
	slog.Debug("Registering boundary handler.", "label", label)
	r.BoundaryRegistry[label] = handler
}

// RegisterPostprocessing registers the decoder for a postprocessing label.
func (r *Registry) RegisterPostprocessing(label string, handler *RegisteredPostprocessing) {
	if _, exists := r.PostprocessingRegistry[label]; exists {
		panic(fmt.Sprintf("postprocessing handler with label '%s' already registered", label))
	}
	slog.Debug("Registering postprocessing handler.", "label", label)
	r.PostprocessingRegistry[label] = handler
}

// RegisterSolver registers the decoder for a solver block label.
func (r *Registry) RegisterSolver(label string, handler *RegisteredSolver) {
	if _, exists := r.SolverRegistry[label]; exists {
		panic(fmt.Sprintf("solver handler with label '%s' already registered", label))
	}
	slog.Debug("Registering solver handler.", "label", label, "kind", handler.Kind)
	r.SolverRegistry[label] = handler
}
