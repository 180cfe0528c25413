package entity

import (
	"errors"

	"github.com/vk/palacegrid/internal/opt"
)

// DefaultL0 is the mesh length unit applied when none is declared (microns).
const DefaultL0 = 1.0e-6

// ErrMissingMesh is returned when a model is declared without a mesh file.
var ErrMissingMesh = errors.New("model requires a mesh reference")

// BoxInput declares a refinement box.
type BoxInput struct {
	Levels         int
	BoundingBoxMin [3]float64
	BoundingBoxMax [3]float64
}

// SphereInput declares a refinement sphere.
type SphereInput struct {
	Levels int
	Center [3]float64
	Radius float64
}

// RefinementInput declares the adaptive and static mesh refinement
// parameters. Every field is optional.
type RefinementInput struct {
	Tol                 opt.Opt[float64]
	MaxIts              opt.Opt[int]
	MaxSize             opt.Opt[int]
	UniformLevels       opt.Opt[int]
	Nonconformal        opt.Opt[bool]
	UpdateFraction      opt.Opt[float64]
	SaveAdaptMesh       opt.Opt[bool]
	SaveAdaptIterations opt.Opt[bool]
	Boxes               []BoxInput
	Spheres             []SphereInput
}

// ModelInput declares the Model section.
type ModelInput struct {
	Mesh       string
	L0         opt.Opt[float64]
	Lc         opt.Opt[float64]
	Refinement RefinementInput
}

// Model is the Model section of a document.
type Model struct {
	payload Payload
}

// Payload returns the ordered section content.
func (m Model) Payload() Payload { return m.payload }

// NewModel builds the Model section. The Refinement key is present only if
// at least one refinement parameter was supplied.
func NewModel(in ModelInput) (Model, error) {
	if in.Mesh == "" {
		return Model{}, ErrMissingMesh
	}
	var p Payload
	p = p.put("Mesh", in.Mesh)
	p = p.put("L0", in.L0.Or(DefaultL0))
	p = putOpt(p, "Lc", in.Lc)
	if r := refinement(in.Refinement); len(r) > 0 {
		p = p.put("Refinement", r)
	}
	return Model{payload: p}, nil
}

func refinement(in RefinementInput) Payload {
	var p Payload
	p = putOpt(p, "Tol", in.Tol)
	p = putOpt(p, "MaxIts", in.MaxIts)
	p = putOpt(p, "MaxSize", in.MaxSize)
	p = putOpt(p, "UniformLevels", in.UniformLevels)
	p = putOpt(p, "Nonconformal", in.Nonconformal)
	p = putOpt(p, "UpdateFraction", in.UpdateFraction)
	p = putOpt(p, "SaveAdaptMesh", in.SaveAdaptMesh)
	p = putOpt(p, "SaveAdaptIterations", in.SaveAdaptIterations)
	if len(in.Boxes) > 0 {
		boxes := make([]Payload, len(in.Boxes))
		for i, b := range in.Boxes {
			boxes[i] = Payload{
				{Key: "Levels", Value: b.Levels},
				{Key: "BoundingBoxMin", Value: b.BoundingBoxMin},
				{Key: "BoundingBoxMax", Value: b.BoundingBoxMax},
			}
		}
		p = p.put("Boxes", boxes)
	}
	if len(in.Spheres) > 0 {
		spheres := make([]Payload, len(in.Spheres))
		for i, s := range in.Spheres {
			spheres[i] = Payload{
				{Key: "Levels", Value: s.Levels},
				{Key: "Center", Value: s.Center},
				{Key: "Radius", Value: s.Radius},
			}
		}
		p = p.put("Spheres", spheres)
	}
	return p
}
