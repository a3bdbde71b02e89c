package estimator

import (
	"testing"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/stretchr/testify/require"
)

func buildTestModel(t *testing.T) model.CostModel {
	t.Helper()
	g := graph.New(false)
	require.NoError(t, g.AddTerm(2.0, []string{"a", "b"}))
	require.NoError(t, g.AddTerm(-1.0, []string{"b", "c"}))
	require.NoError(t, g.AddTerm(0.5, []string{"c", "d"}))
	g.Finalize()
	return model.NewIsingModel(g)
}

func TestProbeReturnsNonNegativeSamples(t *testing.T) {
	m := buildTestModel(t)
	f := rng.NewForker(1)
	samples := Probe(m, f.ForReplica(0), 100)
	require.Len(t, samples, 100)
	for _, s := range samples {
		if s < 0 {
			t.Errorf("sample %v is negative", s)
		}
	}
}

func TestEstimateTemperaturesOrdering(t *testing.T) {
	m := buildTestModel(t)
	f := rng.NewForker(2)
	samples := Probe(m, f.ForReplica(0), 500)

	temps := EstimateTemperatures(samples, 0.9, 0.1)
	if temps.Initial <= temps.Final {
		t.Errorf("Initial (%v) should exceed Final (%v)", temps.Initial, temps.Final)
	}
	if temps.Initial <= 0 || temps.Final < 0 {
		t.Errorf("temperatures must be positive: %+v", temps)
	}
}

func TestEstimateTemperaturesEmptySamples(t *testing.T) {
	temps := EstimateTemperatures(nil, 0.9, 0.1)
	if temps.Initial <= 0 || temps.Final <= 0 {
		t.Errorf("empty-sample fallback should still be positive: %+v", temps)
	}
}

func TestSweepCountForBudget(t *testing.T) {
	if n := SweepCountForBudget(10, 0.1); n != 100 {
		t.Errorf("SweepCountForBudget(10, 0.1) = %d, want 100", n)
	}
	if n := SweepCountForBudget(10, 0); n != 1 {
		t.Errorf("SweepCountForBudget with zero per-sweep time should fall back to 1, got %d", n)
	}
}
