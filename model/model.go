// Package model implements the cost-function model abstraction (spec §4.1)
// and its concrete realizations: Ising, PUBO, grouped (SLC), MaxSat, and the
// compact/adaptive adjacency encodings. Every model type satisfies CostModel,
// the single contract every solver engine (package solver/...) consumes.
package model

import "github.com/qiotoolkit/qiotoolkit/rng"

// Transition is a single-variable-flip proposal: the dense variable index
// to flip. Grouped (SLC) models reuse the same Transition; their
// CalculateCostDifference additionally threads the State's face-sum cache.
type Transition struct {
	Var int
}

// State is the mutable per-replica assignment plus the incremental-update
// caches every model variant needs for O(degree) delta evaluation:
// Assign holds the raw 0/1 encoding (its semantics — spin vs boolean — are
// defined by the owning model), EdgeCache holds, per standalone edge, the
// count of currently-"zero" participants (PUBO's AND-of-not-zero test) or
// the current parity (Ising's XOR test, stored as 0/1 in the same slice),
// and FaceSum holds, per SLC face, the running linear-combination value
// Σ w_i x_i used to evaluate C*(Σw_i x_i + w0)^2 in O(1) per flip.
type State struct {
	Assign    []uint8
	EdgeCache []int32
	FaceSum   []float64
}

// Clone returns a deep copy of s, used when a replica snapshots its current
// state into BestState.
func (s *State) Clone() *State {
	c := &State{
		Assign:    append([]uint8(nil), s.Assign...),
		EdgeCache: append([]int32(nil), s.EdgeCache...),
		FaceSum:   append([]float64(nil), s.FaceSum...),
	}
	return c
}

// CostModel is the contract every solver engine consumes (spec §4.1).
// Implementations: *IsingModel, *PuboModel, *GroupedModel, *MaxSatModel,
// *AdaptivePubo8 and *AdaptivePubo32 (both built by NewAdaptivePuboModel).
type CostModel interface {
	// CalculateCost does a full evaluation of s, used once per replica
	// init, at milestones, and for sanity checks against Δcost.
	CalculateCost(s *State) float64

	// CalculateCostDifference returns Δcost for applying t to s, without
	// mutating s. Must satisfy P1 within floating-point tolerance.
	CalculateCostDifference(s *State, t Transition) float64

	// ApplyTransition mutates s (and its caches) to reflect applying t.
	ApplyTransition(t Transition, s *State)

	// RandomState returns a uniformly random assignment, or the model's
	// initial configuration if HasInitialConfiguration is true.
	RandomState(stream *rng.Stream) *State

	// RandomTransition returns a uniformly random single-variable-flip
	// transition. state is accepted for symmetry with population models
	// that may want to avoid a no-op flip; the base models ignore it.
	RandomTransition(state *State, stream *rng.Stream) Transition

	// SweepSize is the typical number of attempted transitions per sweep:
	// the variable count for graph models.
	SweepSize() int

	// StateMemoryEstimate is bytes per in-flight state (Assign + caches).
	StateMemoryEstimate() int64
	// StateOnlyMemoryEstimate is bytes per stored best-state (Assign only).
	StateOnlyMemoryEstimate() int64

	// EstimateMaxCostDiff/EstimateMinCostDiff bound |Δ| over all
	// single-variable flips (spec §4.1), feeding temperature estimation.
	EstimateMaxCostDiff() float64
	EstimateMinCostDiff() float64

	IsRescaled() bool
	Rescale()
	ScaleFactor() float64

	// Render maps state back to the original variable names and their
	// {0,1} or {-1,+1} values.
	Render(s *State) map[string]float64

	// HasInitialConfiguration reports whether RandomState should instead
	// return a fixed initial assignment supplied in the problem document.
	HasInitialConfiguration() bool
}
