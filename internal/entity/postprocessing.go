package entity

import (
	"github.com/vk/palacegrid/internal/opt"
)

// PostKind tags a postprocessing record.
type PostKind string

const (
	Energy      PostKind = "Energy"
	Probe       PostKind = "Probe"
	SurfaceFlux PostKind = "SurfaceFlux"
	Dielectric  PostKind = "Dielectric"
)

// Level is the document section a postprocessing kind belongs to.
type Level int

const (
	DomainLevel Level = iota
	BoundaryLevel
)

func (l Level) String() string {
	if l == DomainLevel {
		return "Domains"
	}
	return "Boundaries"
}

// Level returns where records of this kind are placed.
func (k PostKind) Level() Level {
	switch k {
	case SurfaceFlux, Dielectric:
		return BoundaryLevel
	default:
		return DomainLevel
	}
}

// DomainPostKinds and BoundaryPostKinds list the kinds of each level in
// emission order.
var (
	DomainPostKinds   = []PostKind{Energy, Probe}
	BoundaryPostKinds = []PostKind{SurfaceFlux, Dielectric}
)

// Postprocessing is a tagged postprocessing record.
type Postprocessing struct {
	Kind    PostKind
	payload Payload
}

// Tag returns the grouping key.
func (p Postprocessing) Tag() string { return string(p.Kind) }

// Payload returns the ordered record content.
func (p Postprocessing) Payload() Payload { return p.payload }

// NewEnergy builds a domain energy integral.
func NewEnergy(index int, attributes []int) Postprocessing {
	return Postprocessing{Kind: Energy, payload: Payload{
		{Key: "Index", Value: index},
		{Key: "Attributes", Value: attrs(attributes)},
	}}
}

// ProbeInput declares a point field probe.
type ProbeInput struct {
	Index      int
	Attributes []int
	Center     [3]float64
}

// NewProbe builds a field probe.
func NewProbe(in ProbeInput) Postprocessing {
	return Postprocessing{Kind: Probe, payload: Payload{
		{Key: "Index", Value: in.Index},
		{Key: "Attributes", Value: attrs(in.Attributes)},
		{Key: "Center", Value: in.Center},
	}}
}

// SurfaceFluxInput declares a surface flux integral. Type is Electric,
// Magnetic or Power.
type SurfaceFluxInput struct {
	Index      int
	Attributes []int
	Type       string
	TwoSided   opt.Opt[bool]
	Center     opt.Opt[[3]float64]
}

// NewSurfaceFlux builds a surface flux integral.
func NewSurfaceFlux(in SurfaceFluxInput) Postprocessing {
	var p Payload
	p = p.put("Index", in.Index)
	p = p.put("Attributes", attrs(in.Attributes))
	p = p.put("Type", in.Type)
	p = putOpt(p, "TwoSided", in.TwoSided)
	p = putOpt(p, "Center", in.Center)
	return Postprocessing{Kind: SurfaceFlux, payload: p}
}

// DielectricInput declares an interface dielectric loss integral.
type DielectricInput struct {
	Index        int
	Attributes   []int
	Type         string
	Thickness    float64
	Permittivity float64
	LossTan      opt.Opt[float64]
	Side         opt.Opt[string]
}

// NewDielectric builds an interface dielectric record.
func NewDielectric(in DielectricInput) Postprocessing {
	var p Payload
	p = p.put("Index", in.Index)
	p = p.put("Attributes", attrs(in.Attributes))
	p = p.put("Type", in.Type)
	p = p.put("Thickness", in.Thickness)
	p = p.put("Permittivity", in.Permittivity)
	p = putOpt(p, "LossTan", in.LossTan)
	p = putOpt(p, "Side", in.Side)
	return Postprocessing{Kind: Dielectric, payload: p}
}
