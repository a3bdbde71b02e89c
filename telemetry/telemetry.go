// Package telemetry implements termination checking and run telemetry
// (spec §4.8/C15): step/time/cost-limit exit reasons and the aggregate
// statistics reported in the result document's benchmark.solver section.
package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ExitReason is why a solver's macro-step loop stopped.
type ExitReason string

const (
	ExitStepLimit  ExitReason = "step_limit"
	ExitCostLimit  ExitReason = "cost_limit"
	ExitTimeLimit  ExitReason = "time_limit"
	ExitHalted     ExitReason = "halted"
	ExitCompleted  ExitReason = "completed" // the loop ended without any limit firing
)

// Milestone is one (step, cost) improvement record surfaced in the result
// document.
type Milestone struct {
	Step int64   `json:"step"`
	Cost float64 `json:"cost"`
}

// Limits bundles the termination conditions checked at each macro-step
// boundary (spec §4.8).
type Limits struct {
	StepLimit  int64
	CostLimit  *float64
	TimeLimit  time.Duration
}

// Clock tracks wall-time against TimeLimit and the external halt flag
// (spec §5 "Cancellation and timeouts"): a single atomic flag consulted
// only between macro-steps, never mid-sweep.
type Clock struct {
	start   time.Time
	limits  Limits
	halted  atomic.Bool
}

// NewClock starts a Clock for the given limits.
func NewClock(limits Limits) *Clock {
	return &Clock{start: time.Now(), limits: limits}
}

// Halt sets the cooperative halt flag; consulted at the next macro-step
// boundary, never mid-sweep.
func (c *Clock) Halt() { c.halted.Store(true) }

// Elapsed returns wall-clock time since the Clock was created.
func (c *Clock) Elapsed() time.Duration { return time.Since(c.start) }

// ShouldStop checks the termination conditions for the given macro-step
// index and current best cost, returning the exit reason and whether to
// stop. Checked only at macro-step boundaries (spec §5).
func (c *Clock) ShouldStop(step int64, bestCost float64) (ExitReason, bool) {
	if c.halted.Load() {
		return ExitHalted, true
	}
	if c.limits.StepLimit > 0 && step >= c.limits.StepLimit {
		return ExitStepLimit, true
	}
	if c.limits.CostLimit != nil && bestCost <= *c.limits.CostLimit {
		return ExitCostLimit, true
	}
	if c.limits.TimeLimit > 0 && c.Elapsed() >= c.limits.TimeLimit {
		return ExitTimeLimit, true
	}
	return "", false
}

// StageHook is the signature of an init/final stage callback. No solver in
// this module takes or invokes a StageHook; solvers print nothing per stage.
type StageHook func(stage string, bestCost float64)

// SolverTelemetry is the per-run aggregate reported in the result
// document's benchmark.solver section.
type SolverTelemetry struct {
	CostMilestones []Milestone
	ExitReason     ExitReason
	LastStep       int64
	StepLimit      int64
	ExecutionTime  time.Duration
}

// Report assembles a SolverTelemetry from a Clock's elapsed time plus the
// caller's step/milestone bookkeeping.
func Report(c *Clock, lastStep int64, milestones []Milestone, reason ExitReason) SolverTelemetry {
	return SolverTelemetry{
		CostMilestones: milestones,
		ExitReason:     reason,
		LastStep:       lastStep,
		StepLimit:      c.limits.StepLimit,
		ExecutionTime:  c.Elapsed(),
	}
}

// Print renders a five-line human-readable summary, in the teacher's
// end-of-run reporting style.
func (t SolverTelemetry) Print() {
	fmt.Printf("=== Solver Telemetry ===\n")
	fmt.Printf("Exit reason   : %s\n", t.ExitReason)
	fmt.Printf("Steps         : %d / %d\n", t.LastStep, t.StepLimit)
	fmt.Printf("Milestones    : %d\n", len(t.CostMilestones))
	fmt.Printf("Execution time: %s\n", t.ExecutionTime)
}

// MergeMilestones merges per-replica milestone slices into one
// globally-sorted-by-step series, used by population/multi-replica
// engines to report a single timeline.
func MergeMilestones(perReplica [][]Milestone) []Milestone {
	var total int
	for _, ms := range perReplica {
		total += len(ms)
	}
	out := make([]Milestone, 0, total)
	for _, ms := range perReplica {
		out = append(out, ms...)
	}
	// Insertion sort is fine here: milestone counts per run are small
	// (improvements are rare by construction).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Step < out[j-1].Step; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
