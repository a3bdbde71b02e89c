// Package pa implements Population Annealing (spec §4.4/C11): a
// population of R replicas collectively traverses a β(step) schedule,
// each macro-step sweeping then resampling to the target population size
// by importance weight.
package pa

import (
	"math"
	"strconv"

	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/replica"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
	"gonum.org/v1/gonum/floats"
)

// Config bundles PA's parameters (spec §4.4).
type Config struct {
	Seed              rng.Seed
	StepLimit         int64
	TargetPopulation  int
	Beta              schedule.Schedule
	NumberOfSolutions int
	Limits            telemetry.Limits
}

// Run executes PA over m per cfg.
func Run(m model.CostModel, cfg Config) solver.Result {
	r := cfg.TargetPopulation
	if r < 1 {
		r = 1
	}
	forker := rng.NewForker(cfg.Seed)
	population := make([]*replica.Replica, r)
	for i := 0; i < r; i++ {
		population[i] = replica.New(i, m, forker.ForReplica(i))
	}

	acc := model.NewAcceptor()
	clock := telemetry.NewClock(cfg.Limits)
	pool := solver.NewPool(cfg.NumberOfSolutions)
	for _, rep := range population {
		pool.Offer(rep.Cost, m, rep.State)
	}

	sweepSize := m.SweepSize()
	var lastStep int64
	var reason telemetry.ExitReason = telemetry.ExitCompleted
	var allMilestones [][]telemetry.Milestone
	best := bestOf(population)
	prevBeta := cfg.Beta.At(0)

	var step int64
	for step = 0; ; step++ {
		if rsn, stop := clock.ShouldStop(step, best.BestCost); stop {
			reason = rsn
			break
		}
		beta := cfg.Beta.At(progressOf(step, cfg.StepLimit))
		for _, rep := range population {
			rep.Sweep(m, func(delta float64, stream *rng.Stream) bool {
				return acc.AcceptBeta(delta, beta, stream)
			}, sweepSize, step)
		}
		population = resample(population, beta-prevBeta, r, forker, step, m)
		prevBeta = beta
		for _, rep := range population {
			pool.Offer(rep.Cost, m, rep.State)
		}
		best = bestOf(population)
	}
	lastStep = step

	for _, rep := range population {
		allMilestones = append(allMilestones, toTelemetryMilestones(rep.Milestones))
	}

	return solver.Result{
		BestCost:      best.BestCost,
		Configuration: m.Render(best.BestState),
		Solutions:     pool.Best(),
		Telemetry:     telemetry.Report(clock, lastStep, telemetry.MergeMilestones(allMilestones), reason),
	}
}

// resample computes per-replica weights w_i = exp(-deltaBeta*E_i),
// expected copy counts kappa_i = R*w_i/sum(w), produces floor(kappa_i)
// copies plus one more with probability kappa_i - floor(kappa_i), then
// re-pools to exactly target: on shortfall it duplicates uniformly chosen
// replicas of the old population, on overflow it drops the tail (spec §4.4).
func resample(population []*replica.Replica, deltaBeta float64, target int, forker *rng.Forker, step int64, m model.CostModel) []*replica.Replica {
	n := len(population)
	weights := make([]float64, n)
	for i, rep := range population {
		weights[i] = math.Exp(-deltaBeta * rep.Cost)
	}
	sum := floats.Sum(weights)
	if sum <= 0 {
		return population
	}
	selectStream := forker.ForName("resample_select_" + strconv.FormatInt(step, 10))
	var next []*replica.Replica
	for i, rep := range population {
		kappa := float64(target) * weights[i] / sum
		copies := int(kappa)
		frac := kappa - float64(copies)
		if selectStream.Float64() < frac {
			copies++
		}
		for c := 0; c < copies; c++ {
			next = append(next, cloneReplica(rep, len(next), forker, step))
		}
	}
	if len(next) == 0 {
		// Degenerate case: every weight rounded to zero copies. Keep the
		// incumbent population rather than producing an empty one.
		return population
	}
	for len(next) < target {
		src := population[int(selectStream.Float64()*float64(n))%n]
		next = append(next, cloneReplica(src, len(next), forker, step))
	}
	if len(next) > target {
		next = next[:target]
	}
	return next
}

// cloneReplica materializes a resampled copy with its own forked RNG
// stream (name keyed by macro-step and slot), since after resampling each
// replica must again be independent (spec §4.4 step 4).
func cloneReplica(r *replica.Replica, slot int, forker *rng.Forker, step int64) *replica.Replica {
	streamName := "pa_" + strconv.FormatInt(step, 10) + "_" + strconv.Itoa(slot)
	c := &replica.Replica{
		ID:        slot,
		Slot:      slot,
		Stream:    forker.ForName(streamName),
		State:     r.State.Clone(),
		Cost:      r.Cost,
		BestState: r.BestState.Clone(),
		BestCost:  r.BestCost,
	}
	return c
}

func progressOf(step, stepLimit int64) float64 {
	if stepLimit <= 0 {
		return 0
	}
	p := float64(step) / float64(stepLimit)
	if p > 1 {
		p = 1
	}
	return p
}

func bestOf(population []*replica.Replica) *replica.Replica {
	best := population[0]
	for _, r := range population[1:] {
		if r.BestCost < best.BestCost {
			best = r
		}
	}
	return best
}

func toTelemetryMilestones(in []replica.Milestone) []telemetry.Milestone {
	out := make([]telemetry.Milestone, len(in))
	for i, m := range in {
		out[i] = telemetry.Milestone{Step: m.Step, Cost: m.Cost}
	}
	return out
}

