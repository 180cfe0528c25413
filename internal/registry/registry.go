package registry

import (
	"sort"
)

// Module is the interface that every entity module must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the decoders for every block kind a deck may declare, for a
// single application instance.
type Registry struct {
	BoundaryRegistry       map[string]*RegisteredBoundary
	PostprocessingRegistry map[string]*RegisteredPostprocessing
	SolverRegistry         map[string]*RegisteredSolver
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		BoundaryRegistry:       make(map[string]*RegisteredBoundary),
		PostprocessingRegistry: make(map[string]*RegisteredPostprocessing),
		SolverRegistry:         make(map[string]*RegisteredSolver),
	}
}

// Boundary returns the decoder registered for a boundary label.
func (r *Registry) Boundary(label string) (*RegisteredBoundary, bool) {
	h, ok := r.BoundaryRegistry[label]
	return h, ok
}

// Postprocessing returns the decoder registered for a postprocessing label.
func (r *Registry) Postprocessing(label string) (*RegisteredPostprocessing, bool) {
	h, ok := r.PostprocessingRegistry[label]
	return h, ok
}

// Solver returns the decoder registered for a solver block label.
func (r *Registry) Solver(label string) (*RegisteredSolver, bool) {
	h, ok := r.SolverRegistry[label]
	return h, ok
}

// SolverLabels returns the registered solver block labels, sorted.
func (r *Registry) SolverLabels() []string {
	return sortedKeys(r.SolverRegistry)
}

// BoundaryLabels returns the registered boundary labels, sorted.
func (r *Registry) BoundaryLabels() []string {
	return sortedKeys(r.BoundaryRegistry)
}

// PostprocessingLabels returns the registered postprocessing labels, sorted.
func (r *Registry) PostprocessingLabels() []string {
	return sortedKeys(r.PostprocessingRegistry)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
