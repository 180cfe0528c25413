package entity

import (
	"github.com/vk/palacegrid/internal/opt"
)

// SolverBlock is the problem-type specific part of the Solver section. Its
// Kind must match the document's problem type.
type SolverBlock struct {
	Kind    ProblemType
	payload Payload
}

// Tag returns the key the block is emitted under.
func (b SolverBlock) Tag() string { return string(b.Kind) }

// Payload returns the ordered block content.
func (b SolverBlock) Payload() Payload { return b.payload }

// WithPayload returns a copy of b carrying p.
func (b SolverBlock) WithPayload(p Payload) SolverBlock {
	return SolverBlock{Kind: b.Kind, payload: p}
}

// EigenmodeInput declares the eigenvalue solver.
type EigenmodeInput struct {
	Target  float64
	Tol     opt.Opt[float64]
	MaxIts  opt.Opt[int]
	MaxSize opt.Opt[int]
	N       int
	Save    opt.Opt[int]
	Type    opt.Opt[string]
}

// NewEigenmode builds an Eigenmode solver block.
func NewEigenmode(in EigenmodeInput) SolverBlock {
	var p Payload
	p = p.put("Target", in.Target)
	p = putOpt(p, "Tol", in.Tol)
	p = putOpt(p, "MaxIts", in.MaxIts)
	p = putOpt(p, "MaxSize", in.MaxSize)
	p = p.put("N", in.N)
	p = putOpt(p, "Save", in.Save)
	p = putOpt(p, "Type", in.Type)
	return SolverBlock{Kind: Eigenmode, payload: p}
}

// DrivenInput declares the frequency domain driven solver. The adaptive
// fast-sweep fields only take effect together with AdaptiveTol.
type DrivenInput struct {
	MinFreq                   float64
	MaxFreq                   float64
	FreqStep                  float64
	SaveStep                  opt.Opt[int]
	SaveOnlyPorts             opt.Opt[bool]
	Restart                   opt.Opt[int]
	AdaptiveTol               opt.Opt[float64]
	AdaptiveMaxSamples        opt.Opt[int]
	AdaptiveConvergenceMemory opt.Opt[int]
}

// NewDriven builds a Driven solver block.
func NewDriven(in DrivenInput) SolverBlock {
	var p Payload
	p = p.put("MinFreq", in.MinFreq)
	p = p.put("MaxFreq", in.MaxFreq)
	p = p.put("FreqStep", in.FreqStep)
	p = putOpt(p, "SaveStep", in.SaveStep)
	p = putOpt(p, "SaveOnlyPorts", in.SaveOnlyPorts)
	p = putOpt(p, "Restart", in.Restart)
	p = putOpt(p, "AdaptiveTol", in.AdaptiveTol)
	p = putOpt(p, "AdaptiveMaxSamples", in.AdaptiveMaxSamples)
	p = putOpt(p, "AdaptiveConvergenceMemory", in.AdaptiveConvergenceMemory)
	return SolverBlock{Kind: Driven, payload: p}
}

// NewElectrostatic builds an Electrostatic solver block.
func NewElectrostatic(save opt.Opt[int]) SolverBlock {
	return SolverBlock{Kind: Electrostatic, payload: putOpt(Payload{}, "Save", save)}
}

// NewMagnetostatic builds a Magnetostatic solver block.
func NewMagnetostatic(save opt.Opt[int]) SolverBlock {
	return SolverBlock{Kind: Magnetostatic, payload: putOpt(Payload{}, "Save", save)}
}

// LinearInput declares the linear solver. Type and KSPType default to
// "Default".
type LinearInput struct {
	Type    opt.Opt[string]
	KSPType opt.Opt[string]
	Tol     opt.Opt[float64]
	MaxIts  opt.Opt[int]
	MaxSize opt.Opt[int]
}

// Linear is the Solver.Linear block.
type Linear struct {
	payload Payload
}

// Payload returns the ordered block content.
func (l Linear) Payload() Payload { return l.payload }

// NewLinear builds the linear solver block.
func NewLinear(in LinearInput) Linear {
	var p Payload
	p = p.put("Type", in.Type.Or("Default"))
	p = p.put("KSPType", in.KSPType.Or("Default"))
	p = putOpt(p, "Tol", in.Tol)
	p = putOpt(p, "MaxIts", in.MaxIts)
	p = putOpt(p, "MaxSize", in.MaxSize)
	return Linear{payload: p}
}

// SolverInput declares the Solver section.
type SolverInput struct {
	Order  opt.Opt[int]
	Device opt.Opt[string]
	Block  SolverBlock
	Linear opt.Opt[Linear]
}

// Solver is the Solver section before it is checked against the problem.
type Solver struct {
	Order  int
	Device string
	Block  SolverBlock
	Linear Linear
}

// NewSolver applies the section defaults: order 1, CPU device and a default
// linear solver.
func NewSolver(in SolverInput) Solver {
	return Solver{
		Order:  in.Order.Or(1),
		Device: in.Device.Or("CPU"),
		Block:  in.Block,
		Linear: in.Linear.Or(NewLinear(LinearInput{})),
	}
}
