// Package postprocessing registers the deck decoders for the domain and
// boundary postprocessing kinds.
package postprocessing

import (
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
	"github.com/vk/palacegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnergyInput is the body of an energy block.
type EnergyInput struct {
	Index      int   `hcl:"index"`
	Attributes []int `hcl:"attributes"`
}

// ProbeInput is the body of a probe block.
type ProbeInput struct {
	Index      int       `hcl:"index"`
	Attributes []int     `hcl:"attributes,optional"`
	Center     []float64 `hcl:"center"`
}

// SurfaceFluxInput is the body of a surface_flux block.
type SurfaceFluxInput struct {
	Index      int        `hcl:"index"`
	Attributes []int      `hcl:"attributes"`
	Type       string     `hcl:"type"`
	TwoSided   *bool      `hcl:"two_sided,optional"`
	Center     *[]float64 `hcl:"center,optional"`
}

// DielectricInput is the body of a dielectric block.
type DielectricInput struct {
	Index        int      `hcl:"index"`
	Attributes   []int    `hcl:"attributes"`
	Type         string   `hcl:"type"`
	Thickness    float64  `hcl:"thickness"`
	Permittivity float64  `hcl:"permittivity"`
	LossTan      *float64 `hcl:"loss_tan,optional"`
	Side         *string  `hcl:"side,optional"`
}

// Register registers every postprocessing kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPostprocessing("energy", registry.Postprocessing(func(in *EnergyInput) (entity.Postprocessing, error) {
		return entity.NewEnergy(in.Index, in.Attributes), nil
	}))

	r.RegisterPostprocessing("probe", registry.Postprocessing(func(in *ProbeInput) (entity.Postprocessing, error) {
		center, err := registry.Vec3("center", in.Center)
		if err != nil {
			return entity.Postprocessing{}, err
		}
		return entity.NewProbe(entity.ProbeInput{
			Index:      in.Index,
			Attributes: in.Attributes,
			Center:     center,
		}), nil
	}))

	r.RegisterPostprocessing("surface_flux", registry.Postprocessing(func(in *SurfaceFluxInput) (entity.Postprocessing, error) {
		center, err := registry.OptVec3("center", in.Center)
		if err != nil {
			return entity.Postprocessing{}, err
		}
		return entity.NewSurfaceFlux(entity.SurfaceFluxInput{
			Index:      in.Index,
			Attributes: in.Attributes,
			Type:       in.Type,
			TwoSided:   opt.FromPtr(in.TwoSided),
			Center:     opt.FromPtr(center),
		}), nil
	}))

	r.RegisterPostprocessing("dielectric", registry.Postprocessing(func(in *DielectricInput) (entity.Postprocessing, error) {
		return entity.NewDielectric(entity.DielectricInput{
			Index:        in.Index,
			Attributes:   in.Attributes,
			Type:         in.Type,
			Thickness:    in.Thickness,
			Permittivity: in.Permittivity,
			LossTan:      opt.FromPtr(in.LossTan),
			Side:         opt.FromPtr(in.Side),
		}), nil
	}))
}
