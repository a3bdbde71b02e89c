// Package sa implements Simulated Annealing (spec §4.2/C9): a sequential
// single-replica Metropolis chain cooling along a Schedule, optionally run
// as several independent restarts with the best chain reported.
package sa

import (
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/replica"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Config bundles SA's parameters (spec §4.2).
type Config struct {
	Seed              rng.Seed
	StepLimit         int64
	Restarts          int
	NumberOfSolutions int
	Schedule          schedule.Schedule
	Limits            telemetry.Limits
}

// Run executes SA over m per cfg: Restarts independent chains (run
// sequentially; per-replica sweeps within a restart are the unit of
// parallel work at the engine layer, but SA has exactly one replica per
// chain so there is nothing to fan out here), returning the best across
// all chains.
func Run(m model.CostModel, cfg Config) solver.Result {
	restarts := cfg.Restarts
	if restarts < 1 {
		restarts = 1
	}
	forker := rng.NewForker(cfg.Seed)
	clock := telemetry.NewClock(cfg.Limits)
	pool := solver.NewPool(cfg.NumberOfSolutions)

	var bestReplica *replica.Replica
	var allMilestones [][]telemetry.Milestone
	var lastStep int64
	var reason telemetry.ExitReason = telemetry.ExitCompleted

	sweepSize := m.SweepSize()
	acc := model.NewAcceptor()
	for chain := 0; chain < restarts; chain++ {
		stream := forker.ForReplica(chain)
		r := replica.New(chain, m, stream)
		pool.Offer(r.Cost, m, r.State)

		var step int64
		for step = 0; ; step++ {
			if rsn, stop := clock.ShouldStop(step, r.BestCost); stop {
				reason = rsn
				break
			}
			progress := progressOf(step, cfg.StepLimit)
			temperature := cfg.Schedule.At(progress)
			r.Sweep(m, func(delta float64, stream *rng.Stream) bool {
				return acc.Accept(delta, temperature, stream)
			}, sweepSize, step)
			pool.Offer(r.Cost, m, r.State)
		}
		if step > lastStep {
			lastStep = step
		}
		allMilestones = append(allMilestones, toTelemetryMilestones(r.Milestones))
		if bestReplica == nil || r.BestCost < bestReplica.BestCost {
			bestReplica = r
		}
	}

	return solver.Result{
		BestCost:      bestReplica.BestCost,
		Configuration: m.Render(bestReplica.BestState),
		Solutions:     pool.Best(),
		Telemetry:     telemetry.Report(clock, lastStep, telemetry.MergeMilestones(allMilestones), reason),
	}
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
