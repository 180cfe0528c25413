package entity

import (
	"github.com/vk/palacegrid/internal/opt"
)

// MaterialInput declares one material assigned to a set of volume attributes.
type MaterialInput struct {
	Attributes   []int
	Permeability Coeff
	Permittivity Coeff
	LossTan      opt.Opt[Coeff]
	Conductivity opt.Opt[Coeff]
	LondonDepth  opt.Opt[float64]
	MaterialAxes opt.Opt[[3][3]float64]
}

// Material is an entry of Domains.Materials.
type Material struct {
	payload Payload
}

// Payload returns the ordered record content.
func (m Material) Payload() Payload { return m.payload }

// NewMaterial builds a material record.
func NewMaterial(in MaterialInput) (Material, error) {
	if err := in.Permeability.validate("Permeability"); err != nil {
		return Material{}, err
	}
	if err := in.Permittivity.validate("Permittivity"); err != nil {
		return Material{}, err
	}
	if c, ok := in.LossTan.Get(); ok {
		if err := c.validate("LossTan"); err != nil {
			return Material{}, err
		}
	}
	if c, ok := in.Conductivity.Get(); ok {
		if err := c.validate("Conductivity"); err != nil {
			return Material{}, err
		}
	}

	var p Payload
	p = p.put("Attributes", attrs(in.Attributes))
	p = p.put("Permeability", in.Permeability)
	p = p.put("Permittivity", in.Permittivity)
	p = putOpt(p, "LossTan", in.LossTan)
	p = putOpt(p, "Conductivity", in.Conductivity)
	p = putOpt(p, "LondonDepth", in.LondonDepth)
	p = putOpt(p, "MaterialAxes", in.MaterialAxes)
	return Material{payload: p}, nil
}
