package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/fsutil"
	"github.com/vk/palacegrid/internal/registry"
	"github.com/vk/palacegrid/internal/schema"
)

// Extension is the file extension of deck files.
const Extension = ".hcl"

// ErrNoFiles is returned when the given paths contain no deck files.
var ErrNoFiles = errors.New("no deck files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	registry *registry.Registry
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL deck loader that resolves block kinds through
// reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{registry: reg}
}

// Load parses every deck file under paths and merges them into one Deck.
// Declaration order is kept across files. A problem, model or solver block
// may appear only once in the whole deck.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Deck, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	logger.Debug("Discovered deck files.", "count", len(files))

	parser := hclparse.NewParser()
	t := newTranslator(ctx, l.registry)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.DeckConfig
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := t.file(ctxlog.With(ctx, "file", file), file, &root); err != nil {
			return nil, err
		}
	}

	deck := t.deck
	deck.Files = files
	logger.Debug("HCL loading complete.",
		"materials", len(deck.Materials),
		"boundaries", len(deck.Boundaries),
		"postprocessing", len(deck.Postprocessing),
		"has_solver", deck.Solver != nil,
	)
	return deck, nil
}

// unknownKind builds the diagnostic for a block label with no registered
// decoder.
func unknownKind(block, kind string, known []string, rng hcl.Range) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Unknown %s kind", block),
		Detail:   fmt.Sprintf("No %s kind %q is registered. Known kinds: %v.", block, kind, known),
		Subject:  rng.Ptr(),
	}}
}
