package config

import (
	"errors"
	"fmt"

	"github.com/vk/palacegrid/internal/document"
	"github.com/vk/palacegrid/internal/entity"
)

// ErrNoProblem is returned when a deck declares no problem block.
var ErrNoProblem = errors.New("deck declares no problem block")

// Deck is the unified, format-agnostic representation of a simulation deck.
// Optional sections are nil when the deck does not declare them.
type Deck struct {
	Problem        *entity.Problem
	Model          *entity.Model
	Materials      []entity.Material
	Boundaries     []entity.Boundary
	Postprocessing []entity.Postprocessing
	Solver         *entity.Solver
	Files          []string
}

// Assemble replays the deck into a new document, section by section. Sections
// the deck omits are left out, so an incomplete deck yields a document whose
// Validate reports the missing sections.
func (d *Deck) Assemble(opts ...document.Option) (*document.Document, error) {
	if d.Problem == nil {
		return nil, ErrNoProblem
	}
	doc := document.New(*d.Problem, opts...)

	if d.Model != nil {
		doc.AddModel(*d.Model)
	}

	var domainPost, boundaryPost []entity.Postprocessing
	for _, p := range d.Postprocessing {
		switch p.Kind.Level() {
		case entity.DomainLevel:
			domainPost = append(domainPost, p)
		case entity.BoundaryLevel:
			boundaryPost = append(boundaryPost, p)
		}
	}
	if len(d.Materials) > 0 || len(domainPost) > 0 {
		doc.AddDomains(d.Materials, domainPost...)
	}
	if len(d.Boundaries) > 0 || len(boundaryPost) > 0 {
		doc.AddBoundaries(d.Boundaries, boundaryPost...)
	}

	if d.Solver != nil {
		if err := doc.AddSolver(*d.Solver); err != nil {
			return nil, fmt.Errorf("assembling solver: %w", err)
		}
	}
	return doc, nil
}
