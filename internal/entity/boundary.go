package entity

import (
	"github.com/vk/palacegrid/internal/opt"
)

// BoundaryKind tags a boundary condition record. The value is the key the
// record is grouped under in the Boundaries section.
type BoundaryKind string

const (
	PEC               BoundaryKind = "PEC"
	PMC               BoundaryKind = "PMC"
	Ground            BoundaryKind = "Ground"
	Absorbing         BoundaryKind = "Absorbing"
	Conductivity      BoundaryKind = "Conductivity"
	Impedance         BoundaryKind = "Impedance"
	LumpedPort        BoundaryKind = "LumpedPort"
	WavePort          BoundaryKind = "WavePort"
	SurfaceCurrent    BoundaryKind = "SurfaceCurrent"
	Terminal          BoundaryKind = "Terminal"
	Periodic          BoundaryKind = "Periodic"
	FloquetWaveVector BoundaryKind = "FloquetWaveVector"
)

// BoundaryKinds lists every boundary kind in the order the Boundaries
// section emits them.
var BoundaryKinds = []BoundaryKind{
	PEC, PMC, Ground, Absorbing, Conductivity, Impedance,
	LumpedPort, WavePort, SurfaceCurrent, Terminal, Periodic, FloquetWaveVector,
}

// Boundary is a tagged boundary condition record.
type Boundary struct {
	Kind    BoundaryKind
	payload Payload
}

// Tag returns the grouping key.
func (b Boundary) Tag() string { return string(b.Kind) }

// Payload returns the ordered record content.
func (b Boundary) Payload() Payload { return b.payload }

func attributeOnly(kind BoundaryKind, ids []int) Boundary {
	return Boundary{Kind: kind, payload: Payload{{Key: "Attributes", Value: attrs(ids)}}}
}

// NewPEC builds a perfect electric conductor boundary.
func NewPEC(attributes []int) Boundary { return attributeOnly(PEC, attributes) }

// NewPMC builds a perfect magnetic conductor boundary.
func NewPMC(attributes []int) Boundary { return attributeOnly(PMC, attributes) }

// NewGround builds a ground boundary (electrostatics).
func NewGround(attributes []int) Boundary { return attributeOnly(Ground, attributes) }

// AbsorbingInput declares a first or second order absorbing boundary.
type AbsorbingInput struct {
	Attributes []int
	Order      opt.Opt[int]
}

// NewAbsorbing builds an absorbing boundary.
func NewAbsorbing(in AbsorbingInput) Boundary {
	var p Payload
	p = p.put("Attributes", attrs(in.Attributes))
	p = putOpt(p, "Order", in.Order)
	return Boundary{Kind: Absorbing, payload: p}
}

// ConductivityInput declares a finite conductivity boundary.
type ConductivityInput struct {
	Attributes   []int
	Conductivity float64
	Permeability opt.Opt[float64]
	Thickness    opt.Opt[float64]
}

// NewConductivity builds a finite conductivity boundary.
func NewConductivity(in ConductivityInput) Boundary {
	var p Payload
	p = p.put("Attributes", attrs(in.Attributes))
	p = p.put("Conductivity", in.Conductivity)
	p = putOpt(p, "Permeability", in.Permeability)
	p = putOpt(p, "Thickness", in.Thickness)
	return Boundary{Kind: Conductivity, payload: p}
}

// ImpedanceInput declares a surface impedance boundary.
type ImpedanceInput struct {
	Attributes []int
	Rs         opt.Opt[float64]
	Ls         opt.Opt[float64]
	Cs         opt.Opt[float64]
}

// NewImpedance builds a surface impedance boundary.
func NewImpedance(in ImpedanceInput) Boundary {
	var p Payload
	p = p.put("Attributes", attrs(in.Attributes))
	p = putOpt(p, "Rs", in.Rs)
	p = putOpt(p, "Ls", in.Ls)
	p = putOpt(p, "Cs", in.Cs)
	return Boundary{Kind: Impedance, payload: p}
}

// PortElement is one element of a multi-element lumped port or surface
// current source.
type PortElement struct {
	Attributes       []int
	Direction        string
	CoordinateSystem opt.Opt[string]
}

func (e PortElement) payload() Payload {
	var p Payload
	p = p.put("Attributes", attrs(e.Attributes))
	p = p.put("Direction", e.Direction)
	p = putOpt(p, "CoordinateSystem", e.CoordinateSystem)
	return p
}

func elements(in opt.Opt[[]PortElement]) opt.Opt[[]Payload] {
	els, ok := in.Get()
	if !ok {
		return opt.None[[]Payload]()
	}
	out := make([]Payload, len(els))
	for i, e := range els {
		out[i] = e.payload()
	}
	return opt.Some(out)
}

// LumpedPortInput declares a lumped port. The circuit group {R, L, C} and the
// surface group {Rs, Ls, Cs} are mutually exclusive, as are Direction and
// Elements.
type LumpedPortInput struct {
	Index      int
	Attributes []int
	Direction  opt.Opt[string]
	R          opt.Opt[float64]
	L          opt.Opt[float64]
	C          opt.Opt[float64]
	Rs         opt.Opt[float64]
	Ls         opt.Opt[float64]
	Cs         opt.Opt[float64]
	Excitation opt.Opt[bool]
	Active     opt.Opt[bool]
	Elements   opt.Opt[[]PortElement]
}

// NewLumpedPort builds a lumped port boundary.
func NewLumpedPort(in LumpedPortInput) (Boundary, error) {
	circuit := in.R.IsSet() || in.L.IsSet() || in.C.IsSet()
	surface := in.Rs.IsSet() || in.Ls.IsSet() || in.Cs.IsSet()
	if circuit && surface {
		return Boundary{}, &ConflictError{Entity: string(LumpedPort), First: "R/L/C", Second: "Rs/Ls/Cs"}
	}
	if in.Direction.IsSet() && in.Elements.IsSet() {
		return Boundary{}, &ConflictError{Entity: string(LumpedPort), First: "Direction", Second: "Elements"}
	}

	var p Payload
	p = p.put("Index", in.Index)
	p = p.put("Attributes", attrs(in.Attributes))
	p = putOpt(p, "Direction", in.Direction)
	p = putOpt(p, "R", in.R)
	p = putOpt(p, "L", in.L)
	p = putOpt(p, "C", in.C)
	p = putOpt(p, "Rs", in.Rs)
	p = putOpt(p, "Ls", in.Ls)
	p = putOpt(p, "Cs", in.Cs)
	p = putOpt(p, "Excitation", in.Excitation)
	p = putOpt(p, "Active", in.Active)
	p = putOpt(p, "Elements", elements(in.Elements))
	return Boundary{Kind: LumpedPort, payload: p}, nil
}

// WavePortInput declares a numeric wave port.
type WavePortInput struct {
	Index      int
	Attributes []int
	Mode       opt.Opt[int]
	Offset     opt.Opt[float64]
	Excitation opt.Opt[bool]
	Active     opt.Opt[bool]
}

// NewWavePort builds a wave port boundary.
func NewWavePort(in WavePortInput) Boundary {
	var p Payload
	p = p.put("Index", in.Index)
	p = p.put("Attributes", attrs(in.Attributes))
	p = putOpt(p, "Mode", in.Mode)
	p = putOpt(p, "Offset", in.Offset)
	p = putOpt(p, "Excitation", in.Excitation)
	p = putOpt(p, "Active", in.Active)
	return Boundary{Kind: WavePort, payload: p}
}

// SurfaceCurrentInput declares a surface current source. Direction and
// Elements are mutually exclusive.
type SurfaceCurrentInput struct {
	Index      int
	Attributes []int
	Direction  opt.Opt[string]
	Elements   opt.Opt[[]PortElement]
}

// NewSurfaceCurrent builds a surface current boundary.
func NewSurfaceCurrent(in SurfaceCurrentInput) (Boundary, error) {
	if in.Direction.IsSet() && in.Elements.IsSet() {
		return Boundary{}, &ConflictError{Entity: string(SurfaceCurrent), First: "Direction", Second: "Elements"}
	}
	var p Payload
	p = p.put("Index", in.Index)
	p = p.put("Attributes", attrs(in.Attributes))
	p = putOpt(p, "Direction", in.Direction)
	p = putOpt(p, "Elements", elements(in.Elements))
	return Boundary{Kind: SurfaceCurrent, payload: p}, nil
}

// NewTerminal builds an electrostatic terminal.
func NewTerminal(index int, attributes []int) Boundary {
	return Boundary{Kind: Terminal, payload: Payload{
		{Key: "Index", Value: index},
		{Key: "Attributes", Value: attrs(attributes)},
	}}
}

// PeriodicInput declares a periodic donor/receiver boundary pair.
// Attributes are the donor side.
type PeriodicInput struct {
	Attributes         []int
	ReceiverAttributes []int
	Translation        opt.Opt[[3]float64]
}

// NewPeriodic builds a periodic boundary.
func NewPeriodic(in PeriodicInput) Boundary {
	var p Payload
	p = p.put("DonorAttributes", attrs(in.Attributes))
	p = p.put("ReceiverAttributes", attrs(in.ReceiverAttributes))
	p = putOpt(p, "Translation", in.Translation)
	return Boundary{Kind: Periodic, payload: p}
}

// FloquetInput declares the Floquet wave vector applied on periodic
// attributes.
type FloquetInput struct {
	Attributes []int
	WaveVector [3]float64
}

// NewFloquetWaveVector builds a Floquet wave vector record.
func NewFloquetWaveVector(in FloquetInput) Boundary {
	return Boundary{Kind: FloquetWaveVector, payload: Payload{
		{Key: "Attributes", Value: attrs(in.Attributes)},
		{Key: "WaveVector", Value: in.WaveVector},
	}}
}
