package analysis

import "math"

// Physical constants in SI units (2019 exact definitions).
const (
	PlanckConstant        = 6.62607015e-34
	ReducedPlanckConstant = PlanckConstant / (2 * math.Pi)
	ElementaryCharge      = 1.602176634e-19
	// FluxQuantum is the superconducting magnetic flux quantum h/2e.
	FluxQuantum = PlanckConstant / (2 * ElementaryCharge)
)
