// Package pt implements Parallel Tempering (spec §4.3/C10): K replicas
// pinned to fixed temperatures, each macro-step a per-replica Metropolis
// sweep followed by an adjacent-pair exchange phase that alternates
// even/odd pairing to preserve detailed balance.
package pt

import (
	"math"

	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/replica"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Config bundles PT's parameters (spec §4.3).
type Config struct {
	Seed              rng.Seed
	StepLimit         int64
	Temperatures      []float64 // T_1 < ... < T_K, strictly increasing (P4)
	NumberOfSolutions int
	Limits            telemetry.Limits
}

// ReplicaTelemetry is the per-replica reporting spec §4.3 names:
// acceptance rate, swap rate, time-averaged cost, and the fraction of
// macro-steps a replica drifted up the temperature ladder.
type ReplicaTelemetry struct {
	AcceptanceRate float64
	SwapRate       float64
	AvgCost        float64
	UpwardDrift    float64
}

// Result extends solver.Result with PT's per-replica telemetry.
type Result struct {
	solver.Result
	PerReplica []ReplicaTelemetry
}

// Run executes PT over m per cfg.
func Run(m model.CostModel, cfg Config) Result {
	k := len(cfg.Temperatures)
	if k == 0 {
		k = 1
		cfg.Temperatures = []float64{1.0}
	}
	forker := rng.NewForker(cfg.Seed)
	replicas := make([]*replica.Replica, k)
	for i := 0; i < k; i++ {
		replicas[i] = replica.New(i, m, forker.ForReplica(i))
	}

	acc := model.NewAcceptor()
	clock := telemetry.NewClock(cfg.Limits)
	pool := solver.NewPool(cfg.NumberOfSolutions)
	for _, r := range replicas {
		pool.Offer(r.Cost, m, r.State)
	}

	stats := make([]swapStats, k)
	sweepSize := m.SweepSize()
	var lastStep int64
	var reason telemetry.ExitReason = telemetry.ExitCompleted
	var allMilestones [][]telemetry.Milestone

	bestOverall := bestOf(replicas)

	var step int64
	for step = 0; ; step++ {
		if rsn, stop := clock.ShouldStop(step, bestOverall.BestCost); stop {
			reason = rsn
			break
		}
		for i, r := range replicas {
			temperature := cfg.Temperatures[i]
			accepted := r.Sweep(m, func(delta float64, stream *rng.Stream) bool {
				return acc.Accept(delta, temperature, stream)
			}, sweepSize, step)
			stats[i].sweeps++
			stats[i].accepted += accepted
			stats[i].costSum += r.Cost
		}
		exchange(replicas, cfg.Temperatures, step, stats)
		for _, r := range replicas {
			pool.Offer(r.Cost, m, r.State)
		}
		bestOverall = bestOf(replicas)
	}
	lastStep = step

	for _, r := range replicas {
		allMilestones = append(allMilestones, toTelemetryMilestones(r.Milestones))
	}

	perReplica := make([]ReplicaTelemetry, k)
	for i := range replicas {
		sweeps := float64(stats[i].sweeps)
		if sweeps == 0 {
			continue
		}
		perReplica[i] = ReplicaTelemetry{
			AcceptanceRate: float64(stats[i].accepted) / (sweeps * float64(sweepSize)),
			SwapRate:       float64(stats[i].swapped) / sweeps,
			AvgCost:        stats[i].costSum / sweeps,
			UpwardDrift:    float64(stats[i].driftedUp) / sweeps,
		}
	}

	return Result{
		Result: solver.Result{
			BestCost:      bestOverall.BestCost,
			Configuration: m.Render(bestOverall.BestState),
			Solutions:     pool.Best(),
			Telemetry:     telemetry.Report(clock, lastStep, telemetry.MergeMilestones(allMilestones), reason),
		},
		PerReplica: perReplica,
	}
}

type swapStats struct {
	sweeps    int
	accepted  int
	swapped   int
	driftedUp int
	costSum   float64
}

// exchange proposes adjacent-pair swaps, alternating the even (0,1),(2,3),…
// pairing on even macro-steps and the odd (1,2),(3,4),… pairing on odd
// macro-steps, per spec §4.3.
func exchange(replicas []*replica.Replica, temperatures []float64, step int64, stats []swapStats) {
	k := len(replicas)
	if k < 2 {
		return
	}
	start := 0
	if step%2 == 1 {
		start = 1
	}
	for i := start; i+1 < k; i += 2 {
		a, b := replicas[i], replicas[i+1]
		betaA, betaB := 1.0/temperatures[i], 1.0/temperatures[i+1]
		deltaBeta := betaA - betaB
		deltaE := a.Cost - b.Cost
		exponent := deltaBeta * deltaE
		accept := exponent >= 0
		var u float64
		if !accept {
			u = a.Stream.Float64()
			accept = u < expClamped(exponent)
		}
		if accept {
			a.State, b.State = b.State, a.State
			a.Cost, b.Cost = b.Cost, a.Cost
			stats[i].swapped++
			stats[i].driftedUp++
			stats[i+1].swapped++
		}
	}
}

func expClamped(x float64) float64 {
	if x > 0 {
		return 1
	}
	// math.Exp is fine here: this is a once-per-pair-per-macro-step call,
	// not the hot per-flip path the lookup-table Acceptor optimizes.
	return math.Exp(x)
}

func bestOf(replicas []*replica.Replica) *replica.Replica {
	best := replicas[0]
	for _, r := range replicas[1:] {
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
