// Package ssmc implements Substochastic Monte Carlo (spec §4.5/C12): a
// population of walkers interleaving a random "walk" move (probability
// α) and a death-birth culling move (probability β, scaled by Δ against
// the current population minimum), re-normalized to target size every
// macro-step.
package ssmc

import (
	"strconv"

	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/replica"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Config bundles SSMC's parameters (spec §4.5). Alpha + Beta must sum to
// at most 1 at every progress point; the remaining probability mass is a
// no-op step, per spec.
type Config struct {
	Seed              rng.Seed
	StepLimit         int64
	TargetPopulation  int
	Alpha             schedule.Schedule
	Beta              schedule.Schedule
	NumberOfSolutions int
	Limits            telemetry.Limits
}

// Run executes SSMC over m per cfg.
func Run(m model.CostModel, cfg Config) solver.Result {
	target := cfg.TargetPopulation
	if target < 1 {
		target = 1
	}
	forker := rng.NewForker(cfg.Seed)
	walkers := make([]*replica.Replica, target)
	for i := 0; i < target; i++ {
		walkers[i] = replica.New(i, m, forker.ForReplica(i))
	}

	clock := telemetry.NewClock(cfg.Limits)
	pool := solver.NewPool(cfg.NumberOfSolutions)
	for _, w := range walkers {
		pool.Offer(w.Cost, m, w.State)
	}

	var lastStep int64
	var reason telemetry.ExitReason = telemetry.ExitCompleted
	var allMilestones [][]telemetry.Milestone
	best := bestOf(walkers)

	var step int64
	for step = 0; ; step++ {
		if rsn, stop := clock.ShouldStop(step, best.BestCost); stop {
			reason = rsn
			break
		}
		progress := progressOf(step, cfg.StepLimit)
		alpha := cfg.Alpha.At(progress)
		beta := cfg.Beta.At(progress)
		eMin := minCost(walkers)
		walkers = stepWalkers(walkers, m, alpha, beta, eMin, target, forker, step)
		for _, w := range walkers {
			pool.Offer(w.Cost, m, w.State)
		}
		best = bestOf(walkers)
	}
	lastStep = step

	for _, w := range walkers {
		allMilestones = append(allMilestones, toTelemetryMilestones(w.Milestones))
	}

	return solver.Result{
		BestCost:      best.BestCost,
		Configuration: m.Render(best.BestState),
		Solutions:     pool.Best(),
		Telemetry:     telemetry.Report(clock, lastStep, telemetry.MergeMilestones(allMilestones), reason),
	}
}

// stepWalkers applies, per walker: with probability alpha an
// unconditional random transition ("walk"); otherwise with probability
// beta a death-birth decision: kill with probability beta*(E-eMin)
// (clamped to [0,1]), else survive and spawn a copy with the
// complementary probability. The leftover probability mass 1-alpha-beta
// is a no-op.
func stepWalkers(walkers []*replica.Replica, m model.CostModel, alpha, beta, eMin float64, target int, forker *rng.Forker, step int64) []*replica.Replica {
	var next []*replica.Replica
	for _, w := range walkers {
		u := w.Stream.Float64()
		switch {
		case u < alpha:
			t := m.RandomTransition(w.State, w.Stream)
			delta := m.CalculateCostDifference(w.State, t)
			m.ApplyTransition(t, w.State)
			w.Cost += delta
			next = append(next, w)
		case u < alpha+beta:
			deathProb := clamp01(beta * (w.Cost - eMin))
			if w.Stream.Float64() < deathProb {
				continue // killed
			}
			next = append(next, w)
			if w.Stream.Float64() < 1-deathProb {
				next = append(next, spawnCopy(w, len(next), forker, step))
			}
		default:
			next = append(next, w) // no-op
		}
	}
	return renormalize(next, target, forker, step, m)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func renormalize(walkers []*replica.Replica, target int, forker *rng.Forker, step int64, m model.CostModel) []*replica.Replica {
	if len(walkers) == 0 {
		// Degenerate all-killed case: reseed one walker from scratch so
		// the population never collapses to nothing.
		return []*replica.Replica{replica.New(0, m, forker.ForName("ssmc_reseed_"+strconv.FormatInt(step, 10)))}
	}
	selectStream := forker.ForName("ssmc_select_" + strconv.FormatInt(step, 10))
	for len(walkers) < target {
		src := walkers[int(selectStream.Float64()*float64(len(walkers)))%len(walkers)]
		walkers = append(walkers, spawnCopy(src, len(walkers), forker, step))
	}
	if len(walkers) > target {
		walkers = walkers[:target]
	}
	for i, w := range walkers {
		w.ID, w.Slot = i, i
	}
	return walkers
}

func spawnCopy(r *replica.Replica, slot int, forker *rng.Forker, step int64) *replica.Replica {
	streamName := "ssmc_" + strconv.FormatInt(step, 10) + "_" + strconv.Itoa(slot)
	return &replica.Replica{
		ID:        slot,
		Slot:      slot,
		Stream:    forker.ForName(streamName),
		State:     r.State.Clone(),
		Cost:      r.Cost,
		BestState: r.BestState.Clone(),
		BestCost:  r.BestCost,
	}
}

func minCost(walkers []*replica.Replica) float64 {
	m := walkers[0].Cost
	for _, w := range walkers[1:] {
		if w.Cost < m {
			m = w.Cost
		}
	}
	return m
}

func bestOf(walkers []*replica.Replica) *replica.Replica {
	best := walkers[0]
	for _, w := range walkers[1:] {
		if w.BestCost < best.BestCost {
			best = w
		}
	}
	return best
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

func toTelemetryMilestones(in []replica.Milestone) []telemetry.Milestone {
	out := make([]telemetry.Milestone, len(in))
	for i, m := range in {
		out[i] = telemetry.Milestone{Step: m.Step, Cost: m.Cost}
	}
	return out
}

