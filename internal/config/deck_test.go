package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/palacegrid/internal/document"
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
)

func problem(t *testing.T, pt entity.ProblemType) *entity.Problem {
	t.Helper()
	p, err := entity.NewProblem(entity.ProblemInput{Type: pt})
	require.NoError(t, err)
	return &p
}

func TestDeck_AssembleRequiresProblem(t *testing.T) {
	_, err := (&Deck{}).Assemble()
	require.ErrorIs(t, err, ErrNoProblem)
}

func TestDeck_AssembleRoutesPostprocessing(t *testing.T) {
	model, err := entity.NewModel(entity.ModelInput{Mesh: "m.msh"})
	require.NoError(t, err)
	solver := entity.NewSolver(entity.SolverInput{Block: entity.NewElectrostatic(opt.None[int]())})

	deck := &Deck{
		Problem:    problem(t, entity.Electrostatic),
		Model:      &model,
		Boundaries: []entity.Boundary{entity.NewGround([]int{1}), entity.NewTerminal(1, []int{2})},
		Postprocessing: []entity.Postprocessing{
			entity.NewEnergy(1, []int{3}),
			entity.NewSurfaceFlux(entity.SurfaceFluxInput{Index: 1, Attributes: []int{2}, Type: "Electric"}),
		},
		Solver: &solver,
	}

	doc, err := deck.Assemble()
	require.NoError(t, err)
	assert.Equal(t, document.Complete, doc.State())
	assert.Equal(t, 1, doc.Supplied(document.SectionDomains), "domain postprocessing supplies Domains")
	assert.Equal(t, 1, doc.Supplied(document.SectionBoundaries))
	require.NoError(t, doc.Validate())
}

func TestDeck_AssembleSurfacesSolverMismatch(t *testing.T) {
	solver := entity.NewSolver(entity.SolverInput{Block: entity.NewDriven(entity.DrivenInput{MinFreq: 1, MaxFreq: 2, FreqStep: 0.1})})
	deck := &Deck{Problem: problem(t, entity.Eigenmode), Solver: &solver}

	_, err := deck.Assemble()
	var mismatch *document.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestDeck_AssembleLeavesMissingSections(t *testing.T) {
	doc, err := (&Deck{Problem: problem(t, entity.Driven)}).Assemble(document.WithArrayEncoding())
	require.NoError(t, err)
	assert.Equal(t, document.Empty, doc.State())

	var verr *document.ValidationError
	require.ErrorAs(t, doc.Validate(), &verr)
	assert.Equal(t, []document.Section{document.SectionModel, document.SectionDomains, document.SectionSolver}, verr.Missing)
}
