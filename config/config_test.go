package config

import (
	"math"
	"testing"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/qerrors"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/stretchr/testify/require"
)

func TestBuildGraphIsingTerms(t *testing.T) {
	doc := &CostFunctionDoc{
		Type: "ising",
		Terms: []Term{
			{C: 1.0, IDs: []int{1, 2}},
			{C: -2.0, IDs: []int{2, 3}},
		},
	}
	g, err := BuildGraph(doc)
	require.NoError(t, err)
	require.Equal(t, 3, g.N())
	require.Len(t, g.Edges, 2)
}

// B2: missing terms and terms_slc both is a ParsingError.
func TestBuildGraphMissingTermsIsParsingError(t *testing.T) {
	_, err := BuildGraph(&CostFunctionDoc{Type: "ising"})
	require.Error(t, err)
	qerr, ok := err.(*qerrors.Error)
	require.True(t, ok)
	require.Equal(t, qerrors.ParsingError, qerr.Kind)
}

// Grounded directly on the original C++ IsingGrouped.MetropolisSLC fixture:
// factored form x0*x1 + x1*x2 + x3 + 2*(x1+x2+x3+x4+x5+x6+x7-x9-1)^2 +
// 3*(x0+2*x2+4*x4-x6+x8)^2, minimum cost 2. Exercises the w0 constant
// sub-term ("ids": []) inside terms_slc, which BuildGraph must fold into
// the face's offset rather than reject.
func TestBuildModelIsingGroupedReachesOriginalMinimum(t *testing.T) {
	doc := &CostFunctionDoc{
		Type: "ising_grouped",
		Terms: []Term{
			{C: 1, IDs: []int{0, 1}},
			{C: 1, IDs: []int{1, 2}},
			{C: 1, IDs: []int{3}},
		},
		TermsSLC: []SLCTerm{
			{C: 2, Terms: []Term{
				{C: 1, IDs: []int{1}},
				{C: 1, IDs: []int{2}},
				{C: 1, IDs: []int{3}},
				{C: 1, IDs: []int{4}},
				{C: 1, IDs: []int{5}},
				{C: 1, IDs: []int{6}},
				{C: 1, IDs: []int{7}},
				{C: -1, IDs: []int{9}},
				{C: -1, IDs: []int{}},
			}},
			{C: 3, Terms: []Term{
				{C: 1, IDs: []int{0}},
				{C: 2, IDs: []int{2}},
				{C: 4, IDs: []int{4}},
				{C: -1, IDs: []int{6}},
				{C: 1, IDs: []int{8}},
			}},
		},
	}
	g, err := BuildGraph(doc)
	require.NoError(t, err)
	m, err := BuildModel(doc, g)
	require.NoError(t, err)

	min := 200.0
	for seed := rng.Seed(1); seed <= 5; seed++ {
		forker := rng.NewForker(seed)
		stream := forker.ForName("metropolis")
		s := m.RandomState(stream)
		cost := m.CalculateCost(s)
		if cost < min {
			min = cost
		}
		const temperature = 0.5
		for i := 0; i < 5000; i++ {
			transition := m.RandomTransition(s, stream)
			diff := m.CalculateCostDifference(s, transition)
			if diff < 0 || stream.Uniform() < math.Exp(-diff/temperature) {
				m.ApplyTransition(transition, s)
				cost += diff
			}
			if cost < min {
				min = cost
			}
		}
	}
	require.Equal(t, 2.0, min)
}

func TestBuildModelIsingRoundTrip(t *testing.T) {
	doc := &CostFunctionDoc{
		Type: "ising",
		Terms: []Term{
			{C: 3.0, IDs: []int{1, 2}},
		},
	}
	g, err := BuildGraph(doc)
	require.NoError(t, err)
	m, err := BuildModel(doc, g)
	require.NoError(t, err)
	require.False(t, m.HasInitialConfiguration())
}

func TestBuildModelClockIsValueError(t *testing.T) {
	doc := &CostFunctionDoc{Type: "clock"}
	g := mustTrivialGraph(t)
	_, err := BuildModel(doc, g)
	require.Error(t, err)
	qerr, ok := err.(*qerrors.Error)
	require.True(t, ok)
	require.Equal(t, qerrors.ValueError, qerr.Kind)
}

func TestBuildModelClockAboveThresholdIsNotImplemented(t *testing.T) {
	doc := &CostFunctionDoc{Type: "clock", Q: 5}
	g := mustTrivialGraph(t)
	_, err := BuildModel(doc, g)
	require.Error(t, err)
	qerr, ok := err.(*qerrors.Error)
	require.True(t, ok)
	require.Equal(t, qerrors.NotImplemented, qerr.Kind)
}

func TestBuildMaxSatInfersVarCountFromLiterals(t *testing.T) {
	doc := &CostFunctionDoc{
		Type: "maxsat",
		Terms: []Term{
			{C: 1, IDs: []int{-1}},
			{C: 4, IDs: []int{1, 2}},
			{C: 2, IDs: []int{-2}},
		},
	}
	m, err := BuildMaxSat(doc)
	require.NoError(t, err)
	require.NotNil(t, m)
	stream := rng.NewForker(1).ForReplica(0)
	rendered := m.Render(m.RandomState(stream))
	require.Len(t, rendered, 2)
}

func TestBuildModelTSPIsNotImplemented(t *testing.T) {
	doc := &CostFunctionDoc{Type: "tsp"}
	g := mustTrivialGraph(t)
	_, err := BuildModel(doc, g)
	require.Error(t, err)
	qerr, ok := err.(*qerrors.Error)
	require.True(t, ok)
	require.Equal(t, qerrors.NotImplemented, qerr.Kind)
}

func mustTrivialGraph(t *testing.T) *graph.Graph {
	t.Helper()
	doc := &CostFunctionDoc{Type: "ising", Terms: []Term{{C: 1, IDs: []int{1}}}}
	g, err := BuildGraph(doc)
	require.NoError(t, err)
	return g
}

func TestValidateRejectsUnknownTarget(t *testing.T) {
	d := &Document{Target: "not-a-real-target", InputDataURI: "x.json"}
	require.Error(t, d.Validate())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	require.Error(t, (&Document{}).Validate())
}

func TestValidateRejectsOutOfRangeSolutions(t *testing.T) {
	d := &Document{
		Target:       "simulatedannealing.qiotoolkit",
		InputDataURI: "x.json",
		Params:       Params{NumberOfSolutions: 1001},
	}
	require.Error(t, d.Validate())
}

func TestResolveTargetParameterFree(t *testing.T) {
	r, ok := ResolveTarget("tabu-parameterfree.qiotoolkit")
	require.True(t, ok)
	require.Equal(t, FamilyTabu, r.Family)
	require.True(t, r.ParameterFree)
	require.True(t, r.Implemented)
}

func TestResolveTargetQuantumMonteCarloNotImplemented(t *testing.T) {
	r, ok := ResolveTarget("quantummontecarlo.qiotoolkit")
	require.True(t, ok)
	require.False(t, r.Implemented)
}

func TestResolveTargetUnknown(t *testing.T) {
	_, ok := ResolveTarget("bogus.target")
	require.False(t, ok)
}
