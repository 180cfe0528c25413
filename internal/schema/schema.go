package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Deck Structures ---

// Problem represents the `problem` block of a deck.
type Problem struct {
	Type    string  `hcl:"type"`
	Verbose *int    `hcl:"verbose,optional"`
	Output  *string `hcl:"output,optional"`
}

// Box represents a `box` refinement region.
type Box struct {
	Levels         int       `hcl:"levels"`
	BoundingBoxMin []float64 `hcl:"bounding_box_min"`
	BoundingBoxMax []float64 `hcl:"bounding_box_max"`
}

// Sphere represents a `sphere` refinement region.
type Sphere struct {
	Levels int       `hcl:"levels"`
	Center []float64 `hcl:"center"`
	Radius float64   `hcl:"radius"`
}

// Refinement represents the `refinement` block nested in `model`.
type Refinement struct {
	Tol                 *float64  `hcl:"tol,optional"`
	MaxIts              *int      `hcl:"max_its,optional"`
	MaxSize             *int      `hcl:"max_size,optional"`
	UniformLevels       *int      `hcl:"uniform_levels,optional"`
	Nonconformal        *bool     `hcl:"nonconformal,optional"`
	UpdateFraction      *float64  `hcl:"update_fraction,optional"`
	SaveAdaptMesh       *bool     `hcl:"save_adapt_mesh,optional"`
	SaveAdaptIterations *bool     `hcl:"save_adapt_iterations,optional"`
	Boxes               []*Box    `hcl:"box,block"`
	Spheres             []*Sphere `hcl:"sphere,block"`
}

// Model represents the `model` block of a deck.
type Model struct {
	Mesh       string      `hcl:"mesh"`
	L0         *float64    `hcl:"l0,optional"`
	Lc         *float64    `hcl:"lc,optional"`
	Refinement *Refinement `hcl:"refinement,block"`
}

// Material represents a `material` block. Coefficients are kept as
// expressions because each one may be a number or a list of three numbers.
type Material struct {
	Name         string         `hcl:"name,label"`
	Attributes   []int          `hcl:"attributes"`
	Permeability hcl.Expression `hcl:"permeability"`
	Permittivity hcl.Expression `hcl:"permittivity"`
	LossTan      hcl.Expression `hcl:"loss_tan,optional"`
	Conductivity hcl.Expression `hcl:"conductivity,optional"`
	LondonDepth  *float64       `hcl:"london_depth,optional"`
	MaterialAxes *[][]float64   `hcl:"material_axes,optional"`
}

// Boundary represents a `boundary` block. The body is decoded later by the
// decoder registered for Kind.
type Boundary struct {
	Kind string   `hcl:"kind,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Postprocessing represents a `postprocessing` block.
type Postprocessing struct {
	Kind string   `hcl:"kind,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Linear represents the `linear` block nested in `solver`.
type Linear struct {
	Type    *string  `hcl:"type,optional"`
	KSPType *string  `hcl:"ksp_type,optional"`
	Tol     *float64 `hcl:"tol,optional"`
	MaxIts  *int     `hcl:"max_its,optional"`
	MaxSize *int     `hcl:"max_size,optional"`
}

// Solver represents the `solver` block. The problem-specific block (such as
// `eigenmode {}`) stays in Body.
type Solver struct {
	Order  *int     `hcl:"order,optional"`
	Device *string  `hcl:"device,optional"`
	Linear *Linear  `hcl:"linear,block"`
	Body   hcl.Body `hcl:",remain"`
}

// DeckConfig represents the top-level structure of one deck file.
type DeckConfig struct {
	Problems       []*Problem        `hcl:"problem,block"`
	Models         []*Model          `hcl:"model,block"`
	Materials      []*Material       `hcl:"material,block"`
	Boundaries     []*Boundary       `hcl:"boundary,block"`
	Postprocessing []*Postprocessing `hcl:"postprocessing,block"`
	Solvers        []*Solver         `hcl:"solver,block"`
}
