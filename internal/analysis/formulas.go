package analysis

import (
	"errors"
	"log/slog"
	"math"

	"github.com/vk/palacegrid/internal/opt"
)

// ErrNoJunctionParameter is returned when neither Ej nor Lj is known.
var ErrNoJunctionParameter = errors.New("junction needs either Ej or Lj")

// angular converts a frequency in GHz to rad/s.
func angular(fGHz float64) float64 {
	return 2 * math.Pi * fGHz * 1e9
}

// toMHz converts an angular frequency in rad/s to MHz.
func toMHz(omega float64) float64 {
	return omega / (2 * math.Pi) * 1e-6
}

// JosephsonEnergy returns Ej in joules for a junction inductance lj in henries.
func JosephsonEnergy(lj float64) float64 {
	return FluxQuantum * FluxQuantum / ((2 * math.Pi) * (2 * math.Pi) * lj)
}

// JosephsonInductance is the inverse of JosephsonEnergy.
func JosephsonInductance(ej float64) float64 {
	return FluxQuantum * FluxQuantum / ((2 * math.Pi) * (2 * math.Pi) * ej)
}

// Junction holds the nonlinear element parameters. Exactly one of Ej (J) or
// Lj (H) is expected.
type Junction struct {
	Ej opt.Opt[float64]
	Lj opt.Opt[float64]
}

// IsSet reports whether any parameter was given.
func (j Junction) IsSet() bool {
	return j.Ej.IsSet() || j.Lj.IsSet()
}

// Energy returns Ej, converting from Lj when needed. When both are given Ej
// is used and a warning is logged.
func (j Junction) Energy(logger *slog.Logger) (float64, error) {
	ej, hasEj := j.Ej.Get()
	lj, hasLj := j.Lj.Get()
	switch {
	case hasEj && hasLj:
		logger.Warn("Both Ej and Lj given, using Ej.", "ej", ej, "lj", lj)
		return ej, nil
	case hasEj:
		return ej, nil
	case hasLj:
		return JosephsonEnergy(lj), nil
	default:
		return 0, ErrNoJunctionParameter
	}
}

// Anharmonicity returns the qubit anharmonicity in MHz from the junction
// participation ratio pq, the qubit frequency fq in GHz and Ej in joules.
func Anharmonicity(pq, fq, ej float64) float64 {
	wq := angular(fq)
	return toMHz(-pq * pq * ReducedPlanckConstant * wq * wq / (8 * ej))
}

// DispersiveShift returns the qubit-resonator cross-Kerr shift in MHz.
// Frequencies are in GHz, ej in joules.
func DispersiveShift(pq, pr, fq, fr, ej float64) float64 {
	wq, wr := angular(fq), angular(fr)
	return toMHz(-pq * pr * ReducedPlanckConstant * wq * wr / (4 * ej))
}

// LambShift returns alpha - chi/2. Both arguments and the result are in MHz.
func LambShift(alpha, chi float64) float64 {
	return alpha - chi/2
}

// CouplingStrength returns the transmon-resonator coupling g in MHz from the
// mode frequencies in GHz and the anharmonicity and dispersive shift in MHz.
// The result is NaN when the inputs do not describe a dispersive regime.
func CouplingStrength(fq, fr, alpha, chi float64) float64 {
	delta := (fr - fq) * 1000
	sigma := (fq + fr) * 1000
	denom := alpha/(delta*(delta-alpha)) + alpha/(sigma*(sigma+alpha))
	return math.Sqrt(chi / (2 * denom))
}
