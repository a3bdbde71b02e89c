// Package paramfree implements the parameter-free auto-tuned wrapper
// (spec §4.7/C14): a brief probe derives schedule endpoints and a
// production sweep budget, then the wrapped solver runs under the
// remaining wall-clock time.
package paramfree

import (
	"time"

	"github.com/qiotoolkit/qiotoolkit/estimator"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/solver/pa"
	"github.com/qiotoolkit/qiotoolkit/solver/pt"
	"github.com/qiotoolkit/qiotoolkit/solver/sa"
	"github.com/qiotoolkit/qiotoolkit/solver/ssmc"
	"github.com/qiotoolkit/qiotoolkit/solver/tabu"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Config bundles the wrapper's own parameters; the wrapped family's own
// tunables (schedule, temperatures, population size, tabu tenure) are
// learned rather than supplied, except where noted.
type Config struct {
	Seed              rng.Seed
	ProbeSamples      int
	TimeBudget        time.Duration
	NumberOfSolutions int
	Restarts          int // SA/Tabu only
	TargetPopulation  int // PA/SSMC only
	Replicas          int // PT only
	TabuTenure        int // Tabu only
}

// Run probes m, derives parameters, and runs family under the learned
// schedule and a production time budget (remaining after the probe).
func Run(family Family, m model.CostModel, cfg Config) solver.Result {
	probeStart := time.Now()
	probeSamples := cfg.ProbeSamples
	if probeSamples <= 0 {
		probeSamples = 256
	}
	forker := rng.NewForker(cfg.Seed)
	probeStream := forker.ForName("paramfree_probe")
	samples := estimator.Probe(m, probeStream, probeSamples)
	temps := estimator.EstimateTemperatures(samples, 0.9, 0.1)

	probeElapsed := time.Since(probeStart)
	remaining := cfg.TimeBudget - probeElapsed
	if remaining <= 0 {
		remaining = cfg.TimeBudget / 10
	}
	perSweepSeconds := estimateSweepCost(m, probeElapsed, probeSamples)
	stepLimit := int64(estimator.SweepCountForBudget(remaining.Seconds(), perSweepSeconds))

	limits := limitsFor(remaining, stepLimit)
	sch := schedule.Linear{V0: temps.Initial, V1: temps.Final}

	switch family {
	case FamilySA:
		return sa.Run(m, sa.Config{
			Seed:              cfg.Seed,
			StepLimit:         stepLimit,
			Restarts:          orOne(cfg.Restarts),
			NumberOfSolutions: cfg.NumberOfSolutions,
			Schedule:          sch,
			Limits:            limits,
		})
	case FamilyTabu:
		return tabu.Run(m, tabu.Config{
			Seed:              cfg.Seed,
			StepLimit:         stepLimit,
			Restarts:          orOne(cfg.Restarts),
			TabuTenure:        orOne(cfg.TabuTenure),
			NumberOfSolutions: cfg.NumberOfSolutions,
			Limits:            limits,
		})
	case FamilyPT:
		k := orOne(cfg.Replicas)
		if k < 2 {
			k = 4
		}
		ladder := make([]float64, k)
		laddersched := schedule.Geometric{V0: temps.Final, V1: temps.Initial}
		for i := 0; i < k; i++ {
			ladder[i] = laddersched.At(float64(i) / float64(k-1))
		}
		result := pt.Run(m, pt.Config{
			Seed:              cfg.Seed,
			StepLimit:         stepLimit,
			Temperatures:      ladder,
			NumberOfSolutions: cfg.NumberOfSolutions,
			Limits:            limits,
		})
		return result.Result
	case FamilyPA:
		pop := orOne(cfg.TargetPopulation)
		return pa.Run(m, pa.Config{
			Seed:              cfg.Seed,
			StepLimit:         stepLimit,
			TargetPopulation:  pop,
			Beta:              schedule.BetaFromRange(1/temps.Initial, 1/temps.Final),
			NumberOfSolutions: cfg.NumberOfSolutions,
			Limits:            limits,
		})
	case FamilySSMC:
		pop := orOne(cfg.TargetPopulation)
		return ssmc.Run(m, ssmc.Config{
			Seed:              cfg.Seed,
			StepLimit:         stepLimit,
			TargetPopulation:  pop,
			Alpha:             schedule.Linear{V0: 0.5, V1: 0.1},
			Beta:              schedule.Linear{V0: 0.1, V1: 0.5},
			NumberOfSolutions: cfg.NumberOfSolutions,
			Limits:            limits,
		})
	default:
		panic("paramfree: unknown family")
	}
}

// Family selects which engine the wrapper drives.
type Family int

const (
	FamilySA Family = iota
	FamilyPT
	FamilyPA
	FamilySSMC
	FamilyTabu
)

func orOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// limitsFor bounds the production run by both the learned step count and
// the wall-clock time remaining after the probe (spec §4.7 step 3: "under
// a global wall-clock timeout").
func limitsFor(remaining time.Duration, stepLimit int64) telemetry.Limits {
	return telemetry.Limits{StepLimit: stepLimit, TimeLimit: remaining}
}

func estimateSweepCost(m model.CostModel, probeElapsed time.Duration, probeSamples int) float64 {
	sweepSize := m.SweepSize()
	if sweepSize == 0 || probeSamples == 0 {
		return 1e-6
	}
	perFlip := probeElapsed.Seconds() / float64(probeSamples)
	cost := perFlip * float64(sweepSize)
	if cost <= 0 {
		return 1e-6
	}
	return cost
}
