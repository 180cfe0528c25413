// This file contains the logic for translating decoded deck schema structs
// into the entity records of the format-agnostic config.Deck.

package hcl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
	"github.com/vk/palacegrid/internal/registry"
	"github.com/vk/palacegrid/internal/schema"
)

type translator struct {
	ctx      context.Context
	logger   *slog.Logger
	registry *registry.Registry
	deck     *config.Deck
	// file that first declared each singleton block
	origin map[string]string
}

func newTranslator(ctx context.Context, reg *registry.Registry) *translator {
	return &translator{
		ctx:      ctx,
		logger:   ctxlog.FromContext(ctx),
		registry: reg,
		deck:     &config.Deck{},
		origin:   make(map[string]string),
	}
}

func (t *translator) once(block, file string, n int) error {
	if n == 0 {
		return nil
	}
	if prev, ok := t.origin[block]; ok || n > 1 {
		if !ok {
			prev = file
		}
		return fmt.Errorf("%s: duplicate %s block (first declared in %s)", file, block, prev)
	}
	t.origin[block] = file
	return nil
}

// file translates one decoded deck file. ctx scopes the logger to the file.
func (t *translator) file(ctx context.Context, file string, root *schema.DeckConfig) error {
	t.ctx = ctx
	t.logger = ctxlog.FromContext(ctx)

	singletons := []struct {
		block string
		n     int
	}{
		{"problem", len(root.Problems)},
		{"model", len(root.Models)},
		{"solver", len(root.Solvers)},
	}
	for _, s := range singletons {
		if err := t.once(s.block, file, s.n); err != nil {
			return err
		}
	}

	for _, p := range root.Problems {
		problem, err := translateProblem(p)
		if err != nil {
			return fmt.Errorf("%s: problem: %w", file, err)
		}
		t.deck.Problem = &problem
	}
	for _, m := range root.Models {
		model, err := translateModel(m)
		if err != nil {
			return fmt.Errorf("%s: model: %w", file, err)
		}
		t.deck.Model = &model
	}
	for _, m := range root.Materials {
		material, err := t.translateMaterial(m)
		if err != nil {
			return fmt.Errorf("%s: material %q: %w", file, m.Name, err)
		}
		t.deck.Materials = append(t.deck.Materials, material)
	}
	for _, b := range root.Boundaries {
		boundary, err := t.translateBoundary(b)
		if err != nil {
			return fmt.Errorf("%s: boundary %q %q: %w", file, b.Kind, b.Name, err)
		}
		t.deck.Boundaries = append(t.deck.Boundaries, boundary)
	}
	for _, p := range root.Postprocessing {
		post, err := t.translatePostprocessing(p)
		if err != nil {
			return fmt.Errorf("%s: postprocessing %q %q: %w", file, p.Kind, p.Name, err)
		}
		t.deck.Postprocessing = append(t.deck.Postprocessing, post)
	}
	for _, s := range root.Solvers {
		solver, err := t.translateSolver(s)
		if err != nil {
			return fmt.Errorf("%s: solver: %w", file, err)
		}
		t.deck.Solver = &solver
	}
	return nil
}

func translateProblem(p *schema.Problem) (entity.Problem, error) {
	return entity.NewProblem(entity.ProblemInput{
		Type:    entity.ProblemType(p.Type),
		Verbose: opt.FromPtr(p.Verbose),
		Output:  opt.FromPtr(p.Output),
	})
}

func translateModel(m *schema.Model) (entity.Model, error) {
	in := entity.ModelInput{
		Mesh: m.Mesh,
		L0:   opt.FromPtr(m.L0),
		Lc:   opt.FromPtr(m.Lc),
	}
	if r := m.Refinement; r != nil {
		in.Refinement = entity.RefinementInput{
			Tol:                 opt.FromPtr(r.Tol),
			MaxIts:              opt.FromPtr(r.MaxIts),
			MaxSize:             opt.FromPtr(r.MaxSize),
			UniformLevels:       opt.FromPtr(r.UniformLevels),
			Nonconformal:        opt.FromPtr(r.Nonconformal),
			UpdateFraction:      opt.FromPtr(r.UpdateFraction),
			SaveAdaptMesh:       opt.FromPtr(r.SaveAdaptMesh),
			SaveAdaptIterations: opt.FromPtr(r.SaveAdaptIterations),
		}
		for _, b := range r.Boxes {
			lo, err := registry.Vec3("bounding_box_min", b.BoundingBoxMin)
			if err != nil {
				return entity.Model{}, err
			}
			hi, err := registry.Vec3("bounding_box_max", b.BoundingBoxMax)
			if err != nil {
				return entity.Model{}, err
			}
			in.Refinement.Boxes = append(in.Refinement.Boxes, entity.BoxInput{
				Levels:         b.Levels,
				BoundingBoxMin: lo,
				BoundingBoxMax: hi,
			})
		}
		for _, s := range r.Spheres {
			center, err := registry.Vec3("center", s.Center)
			if err != nil {
				return entity.Model{}, err
			}
			in.Refinement.Spheres = append(in.Refinement.Spheres, entity.SphereInput{
				Levels: s.Levels,
				Center: center,
				Radius: s.Radius,
			})
		}
	}
	return entity.NewModel(in)
}

func (t *translator) translateMaterial(m *schema.Material) (entity.Material, error) {
	var diags hcl.Diagnostics
	mu, d := requireCoeff(t.ctx, "permeability", m.Permeability)
	diags = append(diags, d...)
	eps, d := requireCoeff(t.ctx, "permittivity", m.Permittivity)
	diags = append(diags, d...)
	tan, d := decodeCoeff(t.ctx, "loss_tan", m.LossTan)
	diags = append(diags, d...)
	sigma, d := decodeCoeff(t.ctx, "conductivity", m.Conductivity)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return entity.Material{}, diags
	}

	in := entity.MaterialInput{
		Attributes:   m.Attributes,
		Permeability: mu,
		Permittivity: eps,
		LossTan:      tan,
		Conductivity: sigma,
		LondonDepth:  opt.FromPtr(m.LondonDepth),
	}
	if m.MaterialAxes != nil {
		axes, err := matrix3("material_axes", *m.MaterialAxes)
		if err != nil {
			return entity.Material{}, err
		}
		in.MaterialAxes = opt.Some(axes)
	}
	t.logger.Debug("Translated material.", "name", m.Name, "attributes", m.Attributes)
	return entity.NewMaterial(in)
}

func (t *translator) translateBoundary(b *schema.Boundary) (entity.Boundary, error) {
	h, ok := t.registry.Boundary(b.Kind)
	if !ok {
		return entity.Boundary{}, unknownKind("boundary", b.Kind, t.registry.BoundaryLabels(), b.Body.MissingItemRange())
	}
	input := h.NewInput()
	if diags := gohcl.DecodeBody(b.Body, nil, input); diags.HasErrors() {
		return entity.Boundary{}, diags
	}
	return h.Build(input)
}

func (t *translator) translatePostprocessing(p *schema.Postprocessing) (entity.Postprocessing, error) {
	h, ok := t.registry.Postprocessing(p.Kind)
	if !ok {
		return entity.Postprocessing{}, unknownKind("postprocessing", p.Kind, t.registry.PostprocessingLabels(), p.Body.MissingItemRange())
	}
	input := h.NewInput()
	if diags := gohcl.DecodeBody(p.Body, nil, input); diags.HasErrors() {
		return entity.Postprocessing{}, diags
	}
	return h.Build(input)
}

func (t *translator) translateSolver(s *schema.Solver) (entity.Solver, error) {
	labels := t.registry.SolverLabels()
	bodySchema := &hcl.BodySchema{}
	for _, label := range labels {
		bodySchema.Blocks = append(bodySchema.Blocks, hcl.BlockHeaderSchema{Type: label})
	}
	content, diags := s.Body.Content(bodySchema)
	if diags.HasErrors() {
		return entity.Solver{}, diags
	}
	if len(content.Blocks) != 1 {
		return entity.Solver{}, fmt.Errorf("expected exactly one of %s blocks, got %d", strings.Join(labels, ", "), len(content.Blocks))
	}

	blk := content.Blocks[0]
	h, _ := t.registry.Solver(blk.Type)
	input := h.NewInput()
	if diags := gohcl.DecodeBody(blk.Body, nil, input); diags.HasErrors() {
		return entity.Solver{}, diags
	}
	block, err := h.Build(input)
	if err != nil {
		return entity.Solver{}, fmt.Errorf("%s: %w", blk.Type, err)
	}
	if block.Kind != h.Kind {
		return entity.Solver{}, fmt.Errorf("%s: decoder built a %s block but is registered for %s", blk.Type, block.Kind, h.Kind)
	}

	in := entity.SolverInput{
		Order:  opt.FromPtr(s.Order),
		Device: opt.FromPtr(s.Device),
		Block:  block,
	}
	if lin := s.Linear; lin != nil {
		in.Linear = opt.Some(entity.NewLinear(entity.LinearInput{
			Type:    opt.FromPtr(lin.Type),
			KSPType: opt.FromPtr(lin.KSPType),
			Tol:     opt.FromPtr(lin.Tol),
			MaxIts:  opt.FromPtr(lin.MaxIts),
			MaxSize: opt.FromPtr(lin.MaxSize),
		}))
	}
	return entity.NewSolver(in), nil
}
