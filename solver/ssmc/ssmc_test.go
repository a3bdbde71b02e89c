package ssmc

import (
	"testing"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
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

func TestSSMCRunsAndImproves(t *testing.T) {
	m := buildRing(t, 8)
	cfg := Config{
		Seed:             23,
		StepLimit:        60,
		TargetPopulation: 16,
		Alpha:            schedule.Constant{V: 0.3},
		Beta:             schedule.Linear{V0: 0.1, V1: 0.5},
		Limits:           telemetry.Limits{StepLimit: 60},
	}
	result := Run(m, cfg)
	require.LessOrEqual(t, result.BestCost, -6.0)
	require.Equal(t, telemetry.ExitStepLimit, result.Telemetry.ExitReason)
}

func TestSSMCDeterministicSameSeed(t *testing.T) {
	cfg := Config{
		Seed:             29,
		StepLimit:        15,
		TargetPopulation: 8,
		Alpha:            schedule.Constant{V: 0.2},
		Beta:             schedule.Constant{V: 0.3},
		Limits:           telemetry.Limits{StepLimit: 15},
	}
	r1 := Run(buildRing(t, 6), cfg)
	r2 := Run(buildRing(t, 6), cfg)
	require.Equal(t, r1.BestCost, r2.BestCost)
}

func TestSSMCPopulationNeverCollapses(t *testing.T) {
	m := buildRing(t, 4)
	cfg := Config{
		Seed:             31,
		StepLimit:        20,
		TargetPopulation: 5,
		// beta=1 maximizes death pressure; a walker at the population minimum
		// has death probability 0, so the population is never fully killed.
		Alpha:  schedule.Constant{V: 0},
		Beta:   schedule.Constant{V: 1.0},
		Limits: telemetry.Limits{StepLimit: 20},
	}
	result := Run(m, cfg)
	require.NotEmpty(t, result.Configuration)
}
