package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/palacegrid/internal/opt"
)

// Analyzer derives circuit quantities from a saved document and the two
// result tables of an eigenmode run. It never mutates its inputs, so one
// Analyzer may serve concurrent callers.
type Analyzer struct {
	doc      *SavedDocument
	freqs    *Table
	eprs     *Table
	port     int
	junction Junction
	logger   *slog.Logger

	ejOnce sync.Once
	ej     float64
	ejErr  error
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithJunction supplies Ej or Lj directly instead of reading L from the
// junction's lumped port.
func WithJunction(j Junction) Option {
	return func(a *Analyzer) { a.junction = j }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New creates an Analyzer. freqs maps mode to frequency (GHz), eprs maps
// mode to the junction participation ratio, and port is the Index of the
// lumped port that models the junction.
func New(doc *SavedDocument, freqs, eprs *Table, port int, opts ...Option) *Analyzer {
	a := &Analyzer{
		doc:    doc,
		freqs:  freqs,
		eprs:   eprs,
		port:   port,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// JosephsonEnergy resolves Ej for the junction port. It is resolved once and
// reused by every later call.
func (a *Analyzer) JosephsonEnergy() (float64, error) {
	a.ejOnce.Do(func() {
		a.ej, a.ejErr = a.resolveEj()
	})
	return a.ej, a.ejErr
}

func (a *Analyzer) resolveEj() (float64, error) {
	j := a.junction
	if !j.IsSet() {
		lj, err := a.doc.LumpedPortInductance(a.port)
		if err != nil {
			return 0, err
		}
		j = Junction{Lj: opt.Some(lj)}
	}
	return j.Energy(a.logger)
}

func (a *Analyzer) mode(m int) (f, p float64, err error) {
	if f, err = a.freqs.Lookup(m); err != nil {
		return 0, 0, err
	}
	if p, err = a.eprs.Lookup(m); err != nil {
		return 0, 0, err
	}
	return f, p, nil
}

// Anharmonicity returns the anharmonicity of qubit mode q in MHz.
func (a *Analyzer) Anharmonicity(q int) (float64, error) {
	ej, err := a.JosephsonEnergy()
	if err != nil {
		return 0, err
	}
	fq, pq, err := a.mode(q)
	if err != nil {
		return 0, err
	}
	return Anharmonicity(pq, fq, ej), nil
}

// DispersiveShift returns chi between qubit mode q and resonator mode r in MHz.
func (a *Analyzer) DispersiveShift(q, r int) (float64, error) {
	m, err := a.Metrics(q, r)
	if err != nil {
		return 0, err
	}
	return m.DispersiveShift, nil
}

// LambShift returns the Lamb shift of qubit mode q due to resonator mode r
// in MHz.
func (a *Analyzer) LambShift(q, r int) (float64, error) {
	m, err := a.Metrics(q, r)
	if err != nil {
		return 0, err
	}
	return m.LambShift, nil
}

// CouplingStrength returns g between qubit mode q and resonator mode r in MHz.
func (a *Analyzer) CouplingStrength(q, r int) (float64, error) {
	m, err := a.Metrics(q, r)
	if err != nil {
		return 0, err
	}
	return m.Coupling, nil
}

// Metrics holds every derived quantity for one qubit/resonator pair.
// Frequencies are in GHz, everything else in MHz.
type Metrics struct {
	QubitMode       int
	ResonatorMode   int
	QubitFreq       float64
	ResonatorFreq   float64
	Anharmonicity   float64
	DispersiveShift float64
	LambShift       float64
	Coupling        float64
}

// Metrics computes all quantities for qubit mode q and resonator mode r.
func (a *Analyzer) Metrics(q, r int) (Metrics, error) {
	ej, err := a.JosephsonEnergy()
	if err != nil {
		return Metrics{}, err
	}
	fq, pq, err := a.mode(q)
	if err != nil {
		return Metrics{}, err
	}
	fr, pr, err := a.mode(r)
	if err != nil {
		return Metrics{}, err
	}

	alpha := Anharmonicity(pq, fq, ej)
	chi := DispersiveShift(pq, pr, fq, fr, ej)
	return Metrics{
		QubitMode:       q,
		ResonatorMode:   r,
		QubitFreq:       fq,
		ResonatorFreq:   fr,
		Anharmonicity:   alpha,
		DispersiveShift: chi,
		LambShift:       LambShift(alpha, chi),
		Coupling:        CouplingStrength(fq, fr, alpha, chi),
	}, nil
}

// Report computes Metrics for qubit mode q against every resonator mode,
// concurrently. Results keep the order of resonators.
func (a *Analyzer) Report(ctx context.Context, q int, resonators ...int) ([]Metrics, error) {
	out := make([]Metrics, len(resonators))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range resonators {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := a.Metrics(q, r)
			if err != nil {
				return fmt.Errorf("qubit mode %d, resonator mode %d: %w", q, r, err)
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.logger.Debug("Analysis report computed.", "qubit_mode", q, "resonators", len(resonators))
	return out, nil
}
