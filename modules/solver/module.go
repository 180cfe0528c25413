// Package solver registers the deck decoders for the problem-specific solver
// blocks.
package solver

import (
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
	"github.com/vk/palacegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EigenmodeInput is the body of an eigenmode block.
type EigenmodeInput struct {
	Target  float64  `hcl:"target"`
	Tol     *float64 `hcl:"tol,optional"`
	MaxIts  *int     `hcl:"max_its,optional"`
	MaxSize *int     `hcl:"max_size,optional"`
	N       int      `hcl:"n"`
	Save    *int     `hcl:"save,optional"`
	Type    *string  `hcl:"type,optional"`
}

// DrivenInput is the body of a driven block.
type DrivenInput struct {
	MinFreq                   float64  `hcl:"min_freq"`
	MaxFreq                   float64  `hcl:"max_freq"`
	FreqStep                  float64  `hcl:"freq_step"`
	SaveStep                  *int     `hcl:"save_step,optional"`
	SaveOnlyPorts             *bool    `hcl:"save_only_ports,optional"`
	Restart                   *int     `hcl:"restart,optional"`
	AdaptiveTol               *float64 `hcl:"adaptive_tol,optional"`
	AdaptiveMaxSamples        *int     `hcl:"adaptive_max_samples,optional"`
	AdaptiveConvergenceMemory *int     `hcl:"adaptive_convergence_memory,optional"`
}

// StaticInput is the body of an electrostatic or magnetostatic block.
type StaticInput struct {
	Save *int `hcl:"save,optional"`
}

// Register registers every solver block with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSolver("eigenmode", registry.Solver(entity.Eigenmode, func(in *EigenmodeInput) (entity.SolverBlock, error) {
		return entity.NewEigenmode(entity.EigenmodeInput{
			Target:  in.Target,
			Tol:     opt.FromPtr(in.Tol),
			MaxIts:  opt.FromPtr(in.MaxIts),
			MaxSize: opt.FromPtr(in.MaxSize),
			N:       in.N,
			Save:    opt.FromPtr(in.Save),
			Type:    opt.FromPtr(in.Type),
		}), nil
	}))

	r.RegisterSolver("driven", registry.Solver(entity.Driven, func(in *DrivenInput) (entity.SolverBlock, error) {
		return entity.NewDriven(entity.DrivenInput{
			MinFreq:                   in.MinFreq,
			MaxFreq:                   in.MaxFreq,
			FreqStep:                  in.FreqStep,
			SaveStep:                  opt.FromPtr(in.SaveStep),
			SaveOnlyPorts:             opt.FromPtr(in.SaveOnlyPorts),
			Restart:                   opt.FromPtr(in.Restart),
			AdaptiveTol:               opt.FromPtr(in.AdaptiveTol),
			AdaptiveMaxSamples:        opt.FromPtr(in.AdaptiveMaxSamples),
			AdaptiveConvergenceMemory: opt.FromPtr(in.AdaptiveConvergenceMemory),
		}), nil
	}))

	r.RegisterSolver("electrostatic", registry.Solver(entity.Electrostatic, func(in *StaticInput) (entity.SolverBlock, error) {
		return entity.NewElectrostatic(opt.FromPtr(in.Save)), nil
	}))

	r.RegisterSolver("magnetostatic", registry.Solver(entity.Magnetostatic, func(in *StaticInput) (entity.SolverBlock, error) {
		return entity.NewMagnetostatic(opt.FromPtr(in.Save)), nil
	}))
}
