// Package boundary registers the deck decoders for every boundary condition
// kind.
package boundary

import (
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
	"github.com/vk/palacegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// AttributesInput is the body of pec, pmc and ground blocks.
type AttributesInput struct {
	Attributes []int `hcl:"attributes"`
}

// AbsorbingInput is the body of an absorbing block.
type AbsorbingInput struct {
	Attributes []int `hcl:"attributes"`
	Order      *int  `hcl:"order,optional"`
}

// ConductivityInput is the body of a conductivity block.
type ConductivityInput struct {
	Attributes   []int    `hcl:"attributes"`
	Conductivity float64  `hcl:"conductivity"`
	Permeability *float64 `hcl:"permeability,optional"`
	Thickness    *float64 `hcl:"thickness,optional"`
}

// ImpedanceInput is the body of an impedance block.
type ImpedanceInput struct {
	Attributes []int    `hcl:"attributes"`
	Rs         *float64 `hcl:"rs,optional"`
	Ls         *float64 `hcl:"ls,optional"`
	Cs         *float64 `hcl:"cs,optional"`
}

// ElementInput is a nested element block of a multi-element port.
type ElementInput struct {
	Attributes       []int   `hcl:"attributes"`
	Direction        string  `hcl:"direction"`
	CoordinateSystem *string `hcl:"coordinate_system,optional"`
}

// LumpedPortInput is the body of a lumped_port block.
type LumpedPortInput struct {
	Index      int             `hcl:"index"`
	Attributes []int           `hcl:"attributes,optional"`
	Direction  *string         `hcl:"direction,optional"`
	R          *float64        `hcl:"r,optional"`
	L          *float64        `hcl:"l,optional"`
	C          *float64        `hcl:"c,optional"`
	Rs         *float64        `hcl:"rs,optional"`
	Ls         *float64        `hcl:"ls,optional"`
	Cs         *float64        `hcl:"cs,optional"`
	Excitation *bool           `hcl:"excitation,optional"`
	Active     *bool           `hcl:"active,optional"`
	Elements   []*ElementInput `hcl:"element,block"`
}

// WavePortInput is the body of a wave_port block.
type WavePortInput struct {
	Index      int      `hcl:"index"`
	Attributes []int    `hcl:"attributes"`
	Mode       *int     `hcl:"mode,optional"`
	Offset     *float64 `hcl:"offset,optional"`
	Excitation *bool    `hcl:"excitation,optional"`
	Active     *bool    `hcl:"active,optional"`
}

// SurfaceCurrentInput is the body of a surface_current block.
type SurfaceCurrentInput struct {
	Index      int             `hcl:"index"`
	Attributes []int           `hcl:"attributes,optional"`
	Direction  *string         `hcl:"direction,optional"`
	Elements   []*ElementInput `hcl:"element,block"`
}

// TerminalInput is the body of a terminal block.
type TerminalInput struct {
	Index      int   `hcl:"index"`
	Attributes []int `hcl:"attributes"`
}

// PeriodicInput is the body of a periodic block. Attributes are the donor
// side.
type PeriodicInput struct {
	Attributes         []int      `hcl:"attributes"`
	ReceiverAttributes []int      `hcl:"receiver_attributes"`
	Translation        *[]float64 `hcl:"translation,optional"`
}

// FloquetInput is the body of a floquet_wave_vector block.
type FloquetInput struct {
	Attributes []int     `hcl:"attributes"`
	WaveVector []float64 `hcl:"wave_vector"`
}

func elements(in []*ElementInput) opt.Opt[[]entity.PortElement] {
	if len(in) == 0 {
		return opt.None[[]entity.PortElement]()
	}
	out := make([]entity.PortElement, len(in))
	for i, e := range in {
		out[i] = entity.PortElement{
			Attributes:       e.Attributes,
			Direction:        e.Direction,
			CoordinateSystem: opt.FromPtr(e.CoordinateSystem),
		}
	}
	return opt.Some(out)
}

func attributesOnly(build func([]int) entity.Boundary) *registry.RegisteredBoundary {
	return registry.Boundary(func(in *AttributesInput) (entity.Boundary, error) {
		return build(in.Attributes), nil
	})
}

// Register registers every boundary kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBoundary("pec", attributesOnly(entity.NewPEC))
	r.RegisterBoundary("pmc", attributesOnly(entity.NewPMC))
	r.RegisterBoundary("ground", attributesOnly(entity.NewGround))

	r.RegisterBoundary("absorbing", registry.Boundary(func(in *AbsorbingInput) (entity.Boundary, error) {
		return entity.NewAbsorbing(entity.AbsorbingInput{
			Attributes: in.Attributes,
			Order:      opt.FromPtr(in.Order),
		}), nil
	}))

	r.RegisterBoundary("conductivity", registry.Boundary(func(in *ConductivityInput) (entity.Boundary, error) {
		return entity.NewConductivity(entity.ConductivityInput{
			Attributes:   in.Attributes,
			Conductivity: in.Conductivity,
			Permeability: opt.FromPtr(in.Permeability),
			Thickness:    opt.FromPtr(in.Thickness),
		}), nil
	}))

	r.RegisterBoundary("impedance", registry.Boundary(func(in *ImpedanceInput) (entity.Boundary, error) {
		return entity.NewImpedance(entity.ImpedanceInput{
			Attributes: in.Attributes,
			Rs:         opt.FromPtr(in.Rs),
			Ls:         opt.FromPtr(in.Ls),
			Cs:         opt.FromPtr(in.Cs),
		}), nil
	}))

	r.RegisterBoundary("lumped_port", registry.Boundary(func(in *LumpedPortInput) (entity.Boundary, error) {
		return entity.NewLumpedPort(entity.LumpedPortInput{
			Index:      in.Index,
			Attributes: in.Attributes,
			Direction:  opt.FromPtr(in.Direction),
			R:          opt.FromPtr(in.R),
			L:          opt.FromPtr(in.L),
			C:          opt.FromPtr(in.C),
			Rs:         opt.FromPtr(in.Rs),
			Ls:         opt.FromPtr(in.Ls),
			Cs:         opt.FromPtr(in.Cs),
			Excitation: opt.FromPtr(in.Excitation),
			Active:     opt.FromPtr(in.Active),
			Elements:   elements(in.Elements),
		})
	}))

	r.RegisterBoundary("wave_port", registry.Boundary(func(in *WavePortInput) (entity.Boundary, error) {
		return entity.NewWavePort(entity.WavePortInput{
			Index:      in.Index,
			Attributes: in.Attributes,
			Mode:       opt.FromPtr(in.Mode),
			Offset:     opt.FromPtr(in.Offset),
			Excitation: opt.FromPtr(in.Excitation),
			Active:     opt.FromPtr(in.Active),
		}), nil
	}))

	r.RegisterBoundary("surface_current", registry.Boundary(func(in *SurfaceCurrentInput) (entity.Boundary, error) {
		return entity.NewSurfaceCurrent(entity.SurfaceCurrentInput{
			Index:      in.Index,
			Attributes: in.Attributes,
			Direction:  opt.FromPtr(in.Direction),
			Elements:   elements(in.Elements),
		})
	}))

	r.RegisterBoundary("terminal", registry.Boundary(func(in *TerminalInput) (entity.Boundary, error) {
		return entity.NewTerminal(in.Index, in.Attributes), nil
	}))

	r.RegisterBoundary("periodic", registry.Boundary(func(in *PeriodicInput) (entity.Boundary, error) {
		translation, err := registry.OptVec3("translation", in.Translation)
		if err != nil {
			return entity.Boundary{}, err
		}
		return entity.NewPeriodic(entity.PeriodicInput{
			Attributes:         in.Attributes,
			ReceiverAttributes: in.ReceiverAttributes,
			Translation:        opt.FromPtr(translation),
		}), nil
	}))

	r.RegisterBoundary("floquet_wave_vector", registry.Boundary(func(in *FloquetInput) (entity.Boundary, error) {
		k, err := registry.Vec3("wave_vector", in.WaveVector)
		if err != nil {
			return entity.Boundary{}, err
		}
		return entity.NewFloquetWaveVector(entity.FloquetInput{
			Attributes: in.Attributes,
			WaveVector: k,
		}), nil
	}))
}
