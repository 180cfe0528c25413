package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/palacegrid/internal/entity"
)

// adaptiveSweepFields only mean something to the Driven solver when an
// adaptive tolerance is set.
var adaptiveSweepFields = []string{"Restart", "AdaptiveMaxSamples", "AdaptiveConvergenceMemory"}

// Document accumulates the sections of a simulation configuration. It is
// not safe for concurrent use; a document belongs to the code assembling it
// until it has been saved.
type Document struct {
	problem  entity.Problem
	sections map[Section]entity.Payload
	tracker  *tracker
	logger   *slog.Logger
	arrays   bool
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for soft corrections.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// WithArrayEncoding makes every grouped kind encode as an array, including
// single-member groups.
func WithArrayEncoding() Option {
	return func(d *Document) { d.arrays = true }
}

// New creates a document for the given problem. The Problem section is
// recorded immediately and cannot be changed afterwards.
func New(problem entity.Problem, opts ...Option) *Document {
	d := &Document{
		problem:  problem,
		sections: make(map[Section]entity.Payload),
		tracker:  newTracker(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(d)
	}
	d.sections[SectionProblem] = problem.Payload()
	d.tracker.add(SectionProblem)
	return d
}

// ProblemType returns the type fixed at construction.
func (d *Document) ProblemType() entity.ProblemType {
	return d.problem.Type
}

// State reports the configuration progress.
func (d *Document) State() State {
	return d.tracker.state()
}

// Supplied returns how many times a section has been added.
func (d *Document) Supplied(s Section) int {
	return d.tracker.count(s)
}

// Missing returns the required sections that have not been added yet.
func (d *Document) Missing() []Section {
	return d.tracker.missing()
}

// AddModel sets the Model section.
func (d *Document) AddModel(m entity.Model) {
	d.set(SectionModel, m.Payload())
}

// AddDomains sets the Domains section. Postprocessing records that belong
// to the Boundaries section are skipped with a warning.
func (d *Document) AddDomains(materials []entity.Material, post ...entity.Postprocessing) {
	mats := make([]entity.Payload, len(materials))
	for i, m := range materials {
		mats[i] = m.Payload()
	}
	p := entity.Payload{{Key: "Materials", Value: mats}}
	if pp := d.postprocessing(entity.DomainLevel, entity.DomainPostKinds, post); len(pp) > 0 {
		p = append(p, entity.Field{Key: "Postprocessing", Value: pp})
	}
	d.set(SectionDomains, p)
}

// AddBoundaries sets the Boundaries section, grouping records by kind.
func (d *Document) AddBoundaries(bcs []entity.Boundary, post ...entity.Postprocessing) {
	known := make(map[entity.BoundaryKind]struct{}, len(entity.BoundaryKinds))
	for _, k := range entity.BoundaryKinds {
		known[k] = struct{}{}
	}
	for _, b := range bcs {
		if _, ok := known[b.Kind]; !ok {
			d.logger.Warn("Skipping boundary of unknown kind.", "kind", b.Kind)
		}
	}

	p := group(bcs, names(entity.BoundaryKinds), d.arrays)
	if pp := d.postprocessing(entity.BoundaryLevel, entity.BoundaryPostKinds, post); len(pp) > 0 {
		p = append(p, entity.Field{Key: "Postprocessing", Value: pp})
	}
	d.set(SectionBoundaries, p)
}

// AddSolver sets the Solver section. The block must match the problem type.
// A Driven block without AdaptiveTol loses its adaptive sweep fields.
func (d *Document) AddSolver(s entity.Solver) error {
	if s.Block.Kind != d.problem.Type {
		return &TypeMismatchError{Expected: d.problem.Type, Got: s.Block.Kind}
	}

	block := s.Block
	if block.Kind == entity.Driven {
		block = d.relaxDriven(block)
	}

	p := entity.Payload{
		{Key: "Order", Value: s.Order},
		{Key: "Device", Value: s.Device},
		{Key: block.Tag(), Value: block.Payload()},
		{Key: "Linear", Value: s.Linear.Payload()},
	}
	d.set(SectionSolver, p)
	return nil
}

func (d *Document) relaxDriven(block entity.SolverBlock) entity.SolverBlock {
	p := block.Payload()
	if p.Has("AdaptiveTol") {
		return block
	}
	var dropped []string
	for _, k := range adaptiveSweepFields {
		if p.Has(k) {
			dropped = append(dropped, k)
		}
	}
	if len(dropped) == 0 {
		return block
	}
	d.logger.Warn("AdaptiveTol not set, ignoring adaptive sweep parameters.", "dropped", dropped)
	return block.WithPayload(p.Without(dropped...))
}

func (d *Document) postprocessing(level entity.Level, kinds []entity.PostKind, post []entity.Postprocessing) entity.Payload {
	var kept []entity.Postprocessing
	for _, pp := range post {
		if pp.Kind.Level() != level {
			d.logger.Warn("Skipping postprocessing record placed in the wrong section.",
				"kind", pp.Kind, "section", level.String(), "belongs_to", pp.Kind.Level().String())
			continue
		}
		kept = append(kept, pp)
	}
	return group(kept, names(kinds), d.arrays)
}

func (d *Document) set(s Section, p entity.Payload) {
	d.sections[s] = p
	d.tracker.add(s)
}

// Validate returns a *ValidationError naming every required section that
// has not been supplied.
func (d *Document) Validate() error {
	if missing := d.tracker.missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func (d *Document) payload() entity.Payload {
	var p entity.Payload
	for _, s := range order {
		if content, ok := d.sections[s]; ok {
			p = append(p, entity.Field{Key: string(s), Value: content})
		}
	}
	return p
}

// MarshalJSON implements json.Marshaler. It fails for incomplete documents.
func (d *Document) MarshalJSON() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(d.payload())
}

// Encode writes the indented document to w. Nothing is written when the
// document is incomplete.
func (d *Document) Encode(w io.Writer) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return d.Print(w)
}

// Print writes the indented document to w whether or not it is complete.
func (d *Document) Print(w io.Writer) error {
	raw, err := json.MarshalIndent(d.payload(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

// Save writes the document to path. The file is not touched when the
// document is incomplete.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}
