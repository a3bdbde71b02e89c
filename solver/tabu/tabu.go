// Package tabu implements Tabu Search (spec §4.6/C13): best-improvement
// local search enumerating all single-flip Δs each step, forbidding a
// just-flipped variable from flipping again for tabu_tenure steps unless
// the move would beat the best-seen cost (aspiration), with a stall-window
// randomization restart.
package tabu

import (
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/replica"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Config bundles Tabu's parameters (spec §4.6).
type Config struct {
	Seed              rng.Seed
	StepLimit         int64
	Restarts          int
	TabuTenure        int
	StallWindow       int64 // macro-steps without improvement before randomizing
	NumberOfSolutions int
	Limits            telemetry.Limits
}

// Run executes Tabu over m per cfg.
func Run(m model.CostModel, cfg Config) solver.Result {
	restarts := cfg.Restarts
	if restarts < 1 {
		restarts = 1
	}
	tenure := cfg.TabuTenure
	if tenure < 0 {
		tenure = 0
	}
	stallWindow := cfg.StallWindow
	if stallWindow <= 0 {
		stallWindow = 1 << 30 // effectively disabled
	}

	forker := rng.NewForker(cfg.Seed)
	clock := telemetry.NewClock(cfg.Limits)
	pool := solver.NewPool(cfg.NumberOfSolutions)

	var bestChain *replica.Replica
	var allMilestones [][]telemetry.Milestone
	var lastStep int64
	var reason telemetry.ExitReason = telemetry.ExitCompleted

	n := m.SweepSize()
	for chain := 0; chain < restarts; chain++ {
		stream := forker.ForReplica(chain)
		r := replica.New(chain, m, stream)
		pool.Offer(r.Cost, m, r.State)
		tabuUntil := make([]int64, n)
		var sinceImprovement int64

		var step int64
		for step = 0; ; step++ {
			if rsn, stop := clock.ShouldStop(step, r.BestCost); stop {
				reason = rsn
				break
			}
			chosenVar, chosenDelta, ok := selectMove(m, r.State, tabuUntil, step, r.Cost, r.BestCost)
			if !ok {
				break // no candidate variables (N==0, B1), or every move tabu with no aspiration
			}
			t := model.Transition{Var: chosenVar}
			m.ApplyTransition(t, r.State)
			r.Cost += chosenDelta
			tabuUntil[chosenVar] = step + int64(tenure) + 1
			if r.Cost < r.BestCost {
				r.BestCost = r.Cost
				r.BestState = r.State.Clone()
				r.Milestones = append(r.Milestones, replica.Milestone{Step: step, Cost: r.Cost})
				sinceImprovement = 0
			} else {
				sinceImprovement++
			}
			pool.Offer(r.Cost, m, r.State)

			if sinceImprovement >= stallWindow {
				r.Reset(m, step)
				for i := range tabuUntil {
					tabuUntil[i] = 0
				}
				sinceImprovement = 0
			}
		}
		if step > lastStep {
			lastStep = step
		}
		allMilestones = append(allMilestones, toTelemetryMilestones(r.Milestones))
		if bestChain == nil || r.BestCost < bestChain.BestCost {
			bestChain = r
		}
	}

	return solver.Result{
		BestCost:      bestChain.BestCost,
		Configuration: m.Render(bestChain.BestState),
		Solutions:     pool.Best(),
		Telemetry:     telemetry.Report(clock, lastStep, telemetry.MergeMilestones(allMilestones), reason),
	}
}

// selectMove enumerates every single-variable-flip Δ and picks the best
// non-tabu move, or the globally best move if it is tabu but would beat
// currentBestCost (aspiration, spec §4.6). Returns ok=false if there are
// no variables (B1) or every move is tabu with no aspiration available.
func selectMove(m model.CostModel, s *model.State, tabuUntil []int64, step int64, currentCost, currentBestCost float64) (int, float64, bool) {
	n := len(tabuUntil)
	if n == 0 {
		return -1, 0, false
	}
	globalVar, globalDelta := 0, m.CalculateCostDifference(s, model.Transition{Var: 0})
	nonTabuVar, nonTabuDelta, haveNonTabu := -1, 0.0, false
	for v := 0; v < n; v++ {
		delta := m.CalculateCostDifference(s, model.Transition{Var: v})
		if delta < globalDelta {
			globalDelta = delta
			globalVar = v
		}
		if tabuUntil[v] <= step && (!haveNonTabu || delta < nonTabuDelta) {
			nonTabuDelta = delta
			nonTabuVar = v
			haveNonTabu = true
		}
	}
	if tabuUntil[globalVar] > step {
		if currentCost+globalDelta < currentBestCost {
			return globalVar, globalDelta, true // aspiration
		}
		if haveNonTabu {
			return nonTabuVar, nonTabuDelta, true
		}
		return -1, 0, false
	}
	return globalVar, globalDelta, true
}

func toTelemetryMilestones(in []replica.Milestone) []telemetry.Milestone {
	out := make([]telemetry.Milestone, len(in))
	for i, m := range in {
		out[i] = telemetry.Milestone{Step: m.Step, Cost: m.Cost}
	}
	return out
}
