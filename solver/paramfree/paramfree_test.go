package paramfree

import (
	"testing"
	"time"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/stretchr/testify/require"
)

func buildRing(t *testing.T, n int) *model.IsingModel {
	t.Helper()
	g := graph.New(false)
	for i := 0; i < n; i++ {
		a := string(rune('a' + i))
		b := string(rune('a' + (i+1)%n))
		require.NoError(t, g.AddTerm(1.0, []string{a, b}))
	}
	g.Finalize()
	return model.NewIsingModel(g)
}

// S6 is stated in the spec as a 10s-budget scenario against an external
// fixture not available in this retrieval pack; this exercises the same
// shape (probe, then a bounded production run) on a small self-authored
// model with a short budget so the test suite stays fast.
func TestParamFreeSAWithinBudget(t *testing.T) {
	m := buildRing(t, 10)
	cfg := Config{
		Seed:         99,
		ProbeSamples: 64,
		TimeBudget:   200 * time.Millisecond,
		Restarts:     2,
	}
	start := time.Now()
	result := Run(FamilySA, m, cfg)
	elapsed := time.Since(start)
	require.LessOrEqual(t, elapsed, 2*time.Second)
	require.Less(t, result.BestCost, 10.0) // must beat the all-aligned (maximum-cost) state
}

func TestParamFreeTabu(t *testing.T) {
	m := buildRing(t, 6)
	cfg := Config{
		Seed:         3,
		ProbeSamples: 32,
		TimeBudget:   100 * time.Millisecond,
		TabuTenure:   2,
	}
	result := Run(FamilyTabu, m, cfg)
	require.NotEmpty(t, result.Configuration)
}

func TestParamFreePT(t *testing.T) {
	m := buildRing(t, 6)
	cfg := Config{
		Seed:         4,
		ProbeSamples: 32,
		TimeBudget:   100 * time.Millisecond,
		Replicas:     4,
	}
	result := Run(FamilyPT, m, cfg)
	require.NotEmpty(t, result.Configuration)
}

func TestParamFreePA(t *testing.T) {
	m := buildRing(t, 6)
	cfg := Config{
		Seed:             5,
		ProbeSamples:     32,
		TimeBudget:       100 * time.Millisecond,
		TargetPopulation: 10,
	}
	result := Run(FamilyPA, m, cfg)
	require.NotEmpty(t, result.Configuration)
}

func TestParamFreeSSMC(t *testing.T) {
	m := buildRing(t, 6)
	cfg := Config{
		Seed:             6,
		ProbeSamples:     32,
		TimeBudget:       100 * time.Millisecond,
		TargetPopulation: 10,
	}
	result := Run(FamilySSMC, m, cfg)
	require.NotEmpty(t, result.Configuration)
}
