// Package replica implements the per-thread MCMC worker (spec §3/C5): a
// state, its cost, its own RNG stream, and the best assignment it has seen.
// A replica's lifetime is one solver run — created in the engine's init()
// and released at finalize() (or on a memory-saving retry).
package replica

import (
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/rng"
)

// Replica owns (state, cost, rng, best_state, best_cost, slot,
// cost_history_milestones). "slot" is deliberately untyped here (an int)
// because its meaning is engine-specific: a temperature index for PT, a
// population index for PA/SSMC, unused for SA/Tabu.
type Replica struct {
	ID     int
	Slot   int
	Stream *rng.Stream

	State *model.State
	Cost  float64

	BestState *model.State
	BestCost  float64

	// Milestones records (step, cost) every time BestCost strictly
	// decreases (spec §4.8).
	Milestones []Milestone
}

// Milestone is one (step, cost) improvement record.
type Milestone struct {
	Step int64
	Cost float64
}

// New creates a Replica with its initial state drawn from m, owning
// stream exclusively for the remainder of the run.
func New(id int, m model.CostModel, stream *rng.Stream) *Replica {
	s := m.RandomState(stream)
	cost := m.CalculateCost(s)
	r := &Replica{
		ID:        id,
		Stream:    stream,
		State:     s,
		Cost:      cost,
		BestState: s.Clone(),
		BestCost:  cost,
	}
	return r
}

// Sweep performs one Metropolis sweep of sweepSize attempted single-
// variable flips at the given acceptance function, advancing r.State and
// r.Cost. step is the macro-step index used to timestamp any improvement
// milestone. Returns the number of accepted flips.
func (r *Replica) Sweep(m model.CostModel, acceptor func(delta float64, stream *rng.Stream) bool, sweepSize int, step int64) int {
	accepted := 0
	for i := 0; i < sweepSize; i++ {
		t := m.RandomTransition(r.State, r.Stream)
		delta := m.CalculateCostDifference(r.State, t)
		if acceptor(delta, r.Stream) {
			m.ApplyTransition(t, r.State)
			r.Cost += delta
			accepted++
			r.noteIfBest(step)
		}
	}
	return accepted
}

// noteIfBest updates BestState/BestCost and appends a milestone if
// r.Cost has strictly improved on BestCost.
func (r *Replica) noteIfBest(step int64) {
	if r.Cost < r.BestCost {
		r.BestCost = r.Cost
		r.BestState = r.State.Clone()
		r.Milestones = append(r.Milestones, Milestone{Step: step, Cost: r.Cost})
	}
}

// Reset reinitializes r's state from m (used by Tabu's stall-window
// randomization; restarts build fresh replicas with New), preserving the
// replica's RNG stream and its best-seen record.
func (r *Replica) Reset(m model.CostModel, step int64) {
	r.State = m.RandomState(r.Stream)
	r.Cost = m.CalculateCost(r.State)
	r.noteIfBest(step)
}
