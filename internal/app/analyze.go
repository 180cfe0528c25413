package app

import (
	"context"
	"fmt"
	"math"

	"github.com/fatih/color"

	"github.com/vk/palacegrid/internal/analysis"
	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/opt"
)

// AnalyzeOptions configures the analyze command.
type AnalyzeOptions struct {
	Config     string
	Freq       string
	EPR        string
	EPRColumn  int
	Port       int
	Qubit      int
	Resonators []int
	Junction   analysis.Junction
}

// Analyze computes the qubit metrics of an eigenmode run and prints a report.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	doc, err := analysis.ReadDocumentFile(opts.Config)
	if err != nil {
		return err
	}
	if doc.ProblemType != "" && doc.ProblemType != "Eigenmode" {
		logger.Warn("Document is not an eigenmode problem.", "type", doc.ProblemType)
	}
	freqs, err := analysis.ReadTableFile(opts.Freq, "frequency", 1)
	if err != nil {
		return err
	}
	column := opts.EPRColumn
	if column == 0 {
		column = 1
	}
	eprs, err := analysis.ReadTableFile(opts.EPR, "participation ratio", column)
	if err != nil {
		return err
	}

	an := analysis.New(doc, freqs, eprs, opts.Port,
		analysis.WithLogger(logger),
		analysis.WithJunction(opts.Junction),
	)

	ej, err := an.JosephsonEnergy()
	if err != nil {
		return err
	}
	fq, err := freqs.Lookup(opts.Qubit)
	if err != nil {
		return err
	}
	alpha, err := an.Anharmonicity(opts.Qubit)
	if err != nil {
		return err
	}
	rows, err := an.Report(ctx, opts.Qubit, opts.Resonators...)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(a.outW, "%s port %d: Ej = %.4e J (Lj = %.4e H)\n",
		bold.Sprint("Junction"), opts.Port, ej, analysis.JosephsonInductance(ej))
	fmt.Fprintf(a.outW, "%s mode %d: f = %.6f GHz, anharmonicity = %s\n",
		bold.Sprint("Qubit"), opts.Qubit, fq, signed(alpha))

	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(a.outW)
	fmt.Fprintf(a.outW, "%-10s %-12s %-14s %-14s %-14s\n", "Resonator", "f (GHz)", "chi (MHz)", "Lamb (MHz)", "g (MHz)")
	for _, m := range rows {
		fmt.Fprintf(a.outW, "%-10d %-12.6f %-14s %-14s %-14s\n",
			m.ResonatorMode, m.ResonatorFreq, signed(m.DispersiveShift), signed(m.LambShift), coupling(m.Coupling))
	}
	return nil
}

// signed renders a MHz value, negative values in yellow.
func signed(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	if v < 0 {
		return color.New(color.FgYellow).Sprint(s)
	}
	return s
}

// coupling renders g, flagging values outside the dispersive regime.
func coupling(g float64) string {
	if math.IsNaN(g) {
		return color.New(color.FgRed).Sprint("n/a")
	}
	return fmt.Sprintf("%.4f", g)
}

// JunctionFromFlags builds a Junction from optional Ej (J) and Lj (H) flag
// values; zero means unset.
func JunctionFromFlags(ej, lj float64) analysis.Junction {
	var j analysis.Junction
	if ej != 0 {
		j.Ej = opt.Some(ej)
	}
	if lj != 0 {
		j.Lj = opt.Some(lj)
	}
	return j
}
