package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
)

// --- helpers ---

func newEigenmodeDoc(t *testing.T, opts ...Option) *Document {
	t.Helper()
	p, err := entity.NewProblem(entity.ProblemInput{Type: entity.Eigenmode, Output: opt.Some("eigenmode_output")})
	require.NoError(t, err)
	return New(p, opts...)
}

func mustModel(t *testing.T) entity.Model {
	t.Helper()
	m, err := entity.NewModel(entity.ModelInput{Mesh: "m.bdf"})
	require.NoError(t, err)
	return m
}

func mustMaterial(t *testing.T) entity.Material {
	t.Helper()
	m, err := entity.NewMaterial(entity.MaterialInput{
		Attributes:   []int{1},
		Permeability: entity.Scalar(1.0),
		Permittivity: entity.Scalar(11.45),
		LossTan:      opt.Some(entity.Scalar(0.0)),
	})
	require.NoError(t, err)
	return m
}

func mustPort(t *testing.T, index int, l float64) entity.Boundary {
	t.Helper()
	b, err := entity.NewLumpedPort(entity.LumpedPortInput{
		Index:      index,
		Attributes: []int{5 + index},
		Direction:  opt.Some("+X"),
		R:          opt.Some(0.0),
		L:          opt.Some(l),
		C:          opt.Some(0.0),
	})
	require.NoError(t, err)
	return b
}

func eigenmodeSolver() entity.Solver {
	return entity.NewSolver(entity.SolverInput{
		Order: opt.Some(2),
		Block: entity.NewEigenmode(entity.EigenmodeInput{N: 6, Target: 3.0}),
		Linear: opt.Some(entity.NewLinear(entity.LinearInput{
			Tol:    opt.Some(1e-8),
			MaxIts: opt.Some(50),
		})),
	})
}

func decode(t *testing.T, d *Document) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, d.Encode(&buf))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

// --- scenarios ---

func TestDocument_SingleLumpedPortIsUnwrapped(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)})
	d.AddBoundaries([]entity.Boundary{entity.NewPEC([]int{3, 4}), mustPort(t, 1, 10.4e-9)})
	require.NoError(t, d.AddSolver(eigenmodeSolver()))

	out := decode(t, d)
	boundaries := out["Boundaries"].(map[string]any)
	port, ok := boundaries["LumpedPort"].(map[string]any)
	require.True(t, ok, "a single LumpedPort must be a bare object, got %T", boundaries["LumpedPort"])
	assert.Equal(t, 1.0, port["Index"])
	assert.Equal(t, 10.4e-9, port["L"])
	assert.IsType(t, map[string]any{}, boundaries["PEC"])
	assert.Equal(t, Complete, d.State())
}

func TestDocument_TwoLumpedPortsBecomeArray(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)})
	d.AddBoundaries([]entity.Boundary{
		entity.NewPEC([]int{3}),
		mustPort(t, 1, 10.4e-9),
		mustPort(t, 2, 0),
	})
	require.NoError(t, d.AddSolver(eigenmodeSolver()))

	out := decode(t, d)
	ports, ok := out["Boundaries"].(map[string]any)["LumpedPort"].([]any)
	require.True(t, ok)
	require.Len(t, ports, 2)
	assert.Equal(t, 1.0, ports[0].(map[string]any)["Index"])
	assert.Equal(t, 2.0, ports[1].(map[string]any)["Index"])
}

func TestDocument_ArityCollapse(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 2, 5} {
		bcs := make([]entity.Boundary, n)
		for i := range bcs {
			bcs[i] = entity.NewPMC([]int{i})
		}
		post := make([]entity.Postprocessing, n)
		for i := range post {
			post[i] = entity.NewEnergy(i+1, []int{i})
		}

		d := newEigenmodeDoc(t)
		d.AddModel(mustModel(t))
		d.AddDomains([]entity.Material{mustMaterial(t)}, post...)
		d.AddBoundaries(bcs)
		require.NoError(t, d.AddSolver(eigenmodeSolver()))
		out := decode(t, d)

		pmc, present := out["Boundaries"].(map[string]any)["PMC"]
		domains := out["Domains"].(map[string]any)
		switch n {
		case 0:
			assert.False(t, present, "n=0: key must be omitted")
			assert.NotContains(t, domains, "Postprocessing")
		case 1:
			assert.IsType(t, map[string]any{}, pmc, "n=1")
			assert.IsType(t, map[string]any{}, domains["Postprocessing"].(map[string]any)["Energy"])
		default:
			require.IsType(t, []any{}, pmc, "n=%d", n)
			assert.Len(t, pmc, n)
			energy := domains["Postprocessing"].(map[string]any)["Energy"].([]any)
			assert.Len(t, energy, n)
			for i, e := range energy {
				assert.Equal(t, float64(i+1), e.(map[string]any)["Index"], "input order must be kept")
			}
		}
	}
}

func TestDocument_ArrayEncodingOption(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t, WithArrayEncoding())
	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)})
	d.AddBoundaries([]entity.Boundary{mustPort(t, 1, 1e-9)})
	require.NoError(t, d.AddSolver(eigenmodeSolver()))

	out := decode(t, d)
	assert.IsType(t, []any{}, out["Boundaries"].(map[string]any)["LumpedPort"])
}

func TestDocument_GateIsPermutationInvariant(t *testing.T) {
	t.Parallel()

	adds := map[string]func(*Document){
		"model":   func(d *Document) { d.AddModel(mustModel(t)) },
		"domains": func(d *Document) { d.AddDomains([]entity.Material{mustMaterial(t)}) },
		"solver":  func(d *Document) { require.NoError(t, d.AddSolver(eigenmodeSolver())) },
	}
	perms := [][]string{
		{"model", "domains", "solver"},
		{"model", "solver", "domains"},
		{"domains", "model", "solver"},
		{"domains", "solver", "model"},
		{"solver", "model", "domains"},
		{"solver", "domains", "model"},
	}

	var reference []byte
	for _, perm := range perms {
		d := newEigenmodeDoc(t)
		for i, step := range perm {
			require.Error(t, d.Validate(), "gate must stay closed before all sections (step %d of %v)", i, perm)
			adds[step](d)
		}
		require.NoError(t, d.Validate(), "perm %v", perm)

		raw, err := json.Marshal(d)
		require.NoError(t, err)
		if reference == nil {
			reference = raw
		}
		assert.Equal(t, string(reference), string(raw), "key order must not depend on call order")
	}
}

func TestDocument_ValidationNamesExactGate(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	assert.Equal(t, Empty, d.State())

	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)})
	assert.Equal(t, PartiallyConfigured, d.State())

	var buf bytes.Buffer
	err := d.Encode(&buf)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	if diff := cmp.Diff([]Section{SectionSolver}, vErr.Missing); diff != "" {
		t.Errorf("missing sections mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, buf.Len(), "nothing may be written for an incomplete document")

	fresh := newEigenmodeDoc(t)
	err = fresh.Validate()
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []Section{SectionModel, SectionDomains, SectionSolver}, vErr.Missing)
	assert.Contains(t, err.Error(), "Model, Domains, Solver")
}

func TestDocument_MarshalJSONFailsWhenIncomplete(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	_, err := json.Marshal(d)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestDocument_SolverTypeMismatch(t *testing.T) {
	t.Parallel()

	blocks := map[entity.ProblemType]entity.SolverBlock{
		entity.Electrostatic: entity.NewElectrostatic(opt.None[int]()),
		entity.Magnetostatic: entity.NewMagnetostatic(opt.Some(5)),
		entity.Eigenmode:     entity.NewEigenmode(entity.EigenmodeInput{N: 1, Target: 1}),
		entity.Driven:        entity.NewDriven(entity.DrivenInput{MinFreq: 1, MaxFreq: 2, FreqStep: 0.1}),
	}

	for _, declared := range entity.ProblemTypes {
		for _, supplied := range entity.ProblemTypes {
			p, err := entity.NewProblem(entity.ProblemInput{Type: declared})
			require.NoError(t, err)
			d := New(p)
			err = d.AddSolver(entity.NewSolver(entity.SolverInput{Block: blocks[supplied]}))
			if declared == supplied {
				assert.NoError(t, err)
				assert.Equal(t, 1, d.Supplied(SectionSolver))
				continue
			}
			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch, "%s/%s", declared, supplied)
			assert.Equal(t, declared, mismatch.Expected)
			assert.Contains(t, err.Error(), string(declared))
			assert.Zero(t, d.Supplied(SectionSolver), "a rejected solver must not count as supplied")
		}
	}
}

func TestDocument_DrivenSoftCorrection(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := entity.NewProblem(entity.ProblemInput{Type: entity.Driven})
	require.NoError(t, err)
	d := New(p, WithLogger(logger))
	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)})
	require.NoError(t, d.AddSolver(entity.NewSolver(entity.SolverInput{
		Block: entity.NewDriven(entity.DrivenInput{
			MinFreq: 2, MaxFreq: 8, FreqStep: 0.1,
			Restart:            opt.Some(2),
			AdaptiveMaxSamples: opt.Some(20),
		}),
	})))

	out := decode(t, d)
	driven := out["Solver"].(map[string]any)["Driven"].(map[string]any)
	assert.NotContains(t, driven, "Restart")
	assert.NotContains(t, driven, "AdaptiveMaxSamples")
	assert.Contains(t, driven, "FreqStep")
	assert.Contains(t, logs.String(), "AdaptiveTol not set")

	// With a tolerance the sweep parameters are kept.
	d2 := New(p)
	require.NoError(t, d2.AddSolver(entity.NewSolver(entity.SolverInput{
		Block: entity.NewDriven(entity.DrivenInput{
			MinFreq: 2, MaxFreq: 8, FreqStep: 0.1,
			AdaptiveTol:        opt.Some(1e-3),
			AdaptiveMaxSamples: opt.Some(20),
		}),
	})))
	d2.AddModel(mustModel(t))
	d2.AddDomains(nil)
	driven = decode(t, d2)["Solver"].(map[string]any)["Driven"].(map[string]any)
	assert.Contains(t, driven, "AdaptiveMaxSamples")
}

func TestDocument_ReaddOverwritesAndCounts(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	d.AddModel(mustModel(t))
	second, err := entity.NewModel(entity.ModelInput{Mesh: "other.msh"})
	require.NoError(t, err)
	d.AddModel(second)
	d.AddDomains([]entity.Material{mustMaterial(t)})
	require.NoError(t, d.AddSolver(eigenmodeSolver()))

	assert.Equal(t, 2, d.Supplied(SectionModel))
	out := decode(t, d)
	assert.Equal(t, "other.msh", out["Model"].(map[string]any)["Mesh"])
}

func TestDocument_MisplacedPostprocessingIsSkipped(t *testing.T) {
	t.Parallel()

	d := newEigenmodeDoc(t)
	d.AddModel(mustModel(t))
	d.AddDomains([]entity.Material{mustMaterial(t)},
		entity.NewSurfaceFlux(entity.SurfaceFluxInput{Index: 1, Attributes: []int{4}, Type: "Magnetic"}))
	d.AddBoundaries([]entity.Boundary{entity.NewPEC([]int{3})},
		entity.NewSurfaceFlux(entity.SurfaceFluxInput{Index: 2, Attributes: []int{4}, Type: "Magnetic"}))
	require.NoError(t, d.AddSolver(eigenmodeSolver()))

	out := decode(t, d)
	assert.NotContains(t, out["Domains"].(map[string]any), "Postprocessing")
	flux := out["Boundaries"].(map[string]any)["Postprocessing"].(map[string]any)["SurfaceFlux"].(map[string]any)
	assert.Equal(t, 2.0, flux["Index"])
}

func TestDocument_SaveIsGated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	d := newEigenmodeDoc(t)
	d.AddModel(mustModel(t))
	require.Error(t, d.Save(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "an incomplete document must not create the file")

	d.AddDomains([]entity.Material{mustMaterial(t)})
	require.NoError(t, d.AddSolver(eigenmodeSolver()))
	require.NoError(t, d.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("{\n  \"Problem\": {\n    \"Type\": \"Eigenmode\"")), string(raw))
}
