package model

import (
	"math"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/qerrors"
	"github.com/qiotoolkit/qiotoolkit/rng"
)

// counterWidth is the set of integer widths the adaptive-PUBO cache
// counter may be instantiated at; chosen per-graph to fit a per-state
// byte budget (spec §4.1 "Adaptive PUBO").
type counterWidth interface {
	~uint8 | ~uint32
}

// adaptivePubo is the shared generic implementation behind AdaptivePubo8
// and AdaptivePubo32: a PUBO model over graph.Compact's packed int32
// variable-id stream, with zero-count cache counters of width T. Monomorphizing on
// T avoids boxing the counter slice and keeps the Δcost loop tight.
type adaptivePubo[T counterWidth] struct {
	compact *graph.Compact
	nodeEdges [][]int32 // per-variable list of term indices it participates in (derived once)
	names   []string
}

func newAdaptivePubo[T counterWidth](g *graph.Graph) *adaptivePubo[T] {
	c := graph.FromGraph(g)
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name
	}
	nodeEdges := make([][]int32, len(g.Nodes))
	for ei, e := range g.Edges {
		for _, v := range e.Vars {
			nodeEdges[v] = append(nodeEdges[v], int32(ei))
		}
	}
	return &adaptivePubo[T]{compact: c, nodeEdges: nodeEdges, names: names}
}

type adaptiveState[T counterWidth] struct {
	assign []uint8
	cache  []T
}

func (m *adaptivePubo[T]) coeffOf(ei int32) float64 {
	return m.compact.Coeffs[ei]
}

func (m *adaptivePubo[T]) numTerms() int { return len(m.compact.Coeffs) }

func (m *adaptivePubo[T]) newStateFrom(assign []uint8) *adaptiveState[T] {
	st := &adaptiveState[T]{assign: assign, cache: make([]T, m.numTerms())}
	cur := graph.NewCursor(m.compact)
	var ei int32
	for {
		vars, _, ok := cur.NextTerm()
		if !ok {
			break
		}
		var zero T
		for _, v := range vars {
			if assign[v] == 0 {
				zero++
			}
		}
		st.cache[ei] = zero
		ei++
	}
	return st
}

func (m *adaptivePubo[T]) randomState(stream *rng.Stream) *adaptiveState[T] {
	assign := make([]uint8, len(m.names))
	for i := range assign {
		if stream.Bool() {
			assign[i] = 1
		}
	}
	return m.newStateFrom(assign)
}

func (m *adaptivePubo[T]) cost(st *adaptiveState[T]) float64 {
	var total float64
	cur := graph.NewCursor(m.compact)
	var ei int32
	for {
		_, coeff, ok := cur.NextTerm()
		if !ok {
			break
		}
		if st.cache[ei] == 0 {
			total += coeff
		}
		ei++
	}
	return total
}

func (m *adaptivePubo[T]) costDiff(st *adaptiveState[T], v int) float64 {
	var delta float64
	turningOn := st.assign[v] == 0
	for _, ei := range m.nodeEdges[v] {
		coeff := m.coeffOf(ei)
		oldActive := st.cache[ei] == 0
		var newCount T
		if turningOn {
			newCount = st.cache[ei] - 1
		} else {
			newCount = st.cache[ei] + 1
		}
		newActive := newCount == 0
		if oldActive == newActive {
			continue
		}
		if newActive {
			delta += coeff
		} else {
			delta -= coeff
		}
	}
	return delta
}

func (m *adaptivePubo[T]) apply(st *adaptiveState[T], v int) {
	turningOn := st.assign[v] == 0
	for _, ei := range m.nodeEdges[v] {
		if turningOn {
			st.cache[ei]--
		} else {
			st.cache[ei]++
		}
	}
	st.assign[v] ^= 1
}

// maxLocality returns the maximum possible cache value (the maximum
// term locality), used at construction to pick between AdaptivePubo8 and
// AdaptivePubo32.
func maxLocality(g *graph.Graph) int {
	max := 0
	for _, e := range g.Edges {
		if e.Locality() > max {
			max = e.Locality()
		}
	}
	return max
}

// NewAdaptivePuboModel picks the narrowest cache counter width that fits
// g's maximum term locality (8-bit up to 255 participants per term, else
// 32-bit), per spec §4.1. Returns a ValueError if even a 32-bit counter
// cannot represent the graph (locality > 2^32-1, practically unreachable
// but checked per spec §9 Open Question (i): overflow must error, not
// wrap). It also returns a ValueError when g has more variables than the
// compact stream's int32 variable ids can address.
func NewAdaptivePuboModel(g *graph.Graph) (CostModel, error) {
	if len(g.Nodes) > math.MaxInt32 {
		return nil, qerrors.New(qerrors.ValueError, "adaptive PUBO: %d variables overflow the int32 variable id", len(g.Nodes))
	}
	ml := maxLocality(g)
	if ml > (1<<32)-1 {
		return nil, qerrors.New(qerrors.ValueError, "adaptive PUBO: term locality %d overflows the 32-bit cache counter", ml)
	}
	if ml <= 0xFF {
		return &AdaptivePubo8{impl: newAdaptivePubo[uint8](g)}, nil
	}
	return &AdaptivePubo32{impl: newAdaptivePubo[uint32](g)}, nil
}

// AdaptivePubo8 is the 8-bit-counter instantiation of adaptivePubo.
type AdaptivePubo8 struct {
	impl *adaptivePubo[uint8]
}

func (m *AdaptivePubo8) HasInitialConfiguration() bool { return false }
func (m *AdaptivePubo8) RandomState(stream *rng.Stream) *State {
	return adaptiveToState(m.impl.randomState(stream))
}
func (m *AdaptivePubo8) RandomTransition(state *State, stream *rng.Stream) Transition {
	return Transition{Var: stream.Intn(len(m.impl.names))}
}
func (m *AdaptivePubo8) CalculateCost(s *State) float64 {
	return m.impl.cost(stateToAdaptive8(s))
}
func (m *AdaptivePubo8) CalculateCostDifference(s *State, t Transition) float64 {
	return m.impl.costDiff(stateToAdaptive8(s), t.Var)
}
func (m *AdaptivePubo8) ApplyTransition(t Transition, s *State) {
	st := stateToAdaptive8(s)
	m.impl.apply(st, t.Var)
	syncFromAdaptive8(s, st)
}
func (m *AdaptivePubo8) SweepSize() int { return len(m.impl.names) }
func (m *AdaptivePubo8) StateMemoryEstimate() int64 {
	return int64(len(m.impl.names)) + int64(m.impl.numTerms())
}
func (m *AdaptivePubo8) StateOnlyMemoryEstimate() int64 { return int64(len(m.impl.names)) }
func (m *AdaptivePubo8) EstimateMaxCostDiff() float64   { return adaptiveMaxDelta8(m.impl) }
func (m *AdaptivePubo8) EstimateMinCostDiff() float64   { return adaptiveMinDelta8(m.impl) }
func (m *AdaptivePubo8) IsRescaled() bool                { return false }
func (m *AdaptivePubo8) Rescale()                        {}
func (m *AdaptivePubo8) ScaleFactor() float64            { return 1 }
func (m *AdaptivePubo8) Render(s *State) map[string]float64 {
	out := make(map[string]float64, len(m.impl.names))
	for i, n := range m.impl.names {
		out[n] = float64(s.Assign[i])
	}
	return out
}

// AdaptivePubo32 is the 32-bit-counter instantiation, used when a term's
// locality exceeds 255 participants.
type AdaptivePubo32 struct {
	impl *adaptivePubo[uint32]
}

func (m *AdaptivePubo32) HasInitialConfiguration() bool { return false }
func (m *AdaptivePubo32) RandomState(stream *rng.Stream) *State {
	return adaptiveToState(m.impl.randomState(stream))
}
func (m *AdaptivePubo32) RandomTransition(state *State, stream *rng.Stream) Transition {
	return Transition{Var: stream.Intn(len(m.impl.names))}
}
func (m *AdaptivePubo32) CalculateCost(s *State) float64 {
	return m.impl.cost(stateToAdaptive32(s))
}
func (m *AdaptivePubo32) CalculateCostDifference(s *State, t Transition) float64 {
	return m.impl.costDiff(stateToAdaptive32(s), t.Var)
}
func (m *AdaptivePubo32) ApplyTransition(t Transition, s *State) {
	st := stateToAdaptive32(s)
	m.impl.apply(st, t.Var)
	syncFromAdaptive32(s, st)
}
func (m *AdaptivePubo32) SweepSize() int { return len(m.impl.names) }
func (m *AdaptivePubo32) StateMemoryEstimate() int64 {
	return int64(len(m.impl.names)) + 4*int64(m.impl.numTerms())
}
func (m *AdaptivePubo32) StateOnlyMemoryEstimate() int64 { return int64(len(m.impl.names)) }
func (m *AdaptivePubo32) EstimateMaxCostDiff() float64   { return adaptiveMaxDelta32(m.impl) }
func (m *AdaptivePubo32) EstimateMinCostDiff() float64   { return adaptiveMinDelta32(m.impl) }
func (m *AdaptivePubo32) IsRescaled() bool                { return false }
func (m *AdaptivePubo32) Rescale()                        {}
func (m *AdaptivePubo32) ScaleFactor() float64            { return 1 }
func (m *AdaptivePubo32) Render(s *State) map[string]float64 {
	out := make(map[string]float64, len(m.impl.names))
	for i, n := range m.impl.names {
		out[n] = float64(s.Assign[i])
	}
	return out
}

// State bridges: adaptivePubo keeps its own cache slice type (uint8 or
// uint32) internally but CostModel's State.EdgeCache is int32, so
// AdaptivePubo8/32 translate at the boundary. This keeps the hot Δcost
// loop (costDiff/apply) monomorphized over the narrow width while the
// solver-facing State stays uniform across every model variant.
func adaptiveToState[T counterWidth](st *adaptiveState[T]) *State {
	cache := make([]int32, len(st.cache))
	for i, v := range st.cache {
		cache[i] = int32(v)
	}
	return &State{Assign: st.assign, EdgeCache: cache}
}

func stateToAdaptive8(s *State) *adaptiveState[uint8] {
	cache := make([]uint8, len(s.EdgeCache))
	for i, v := range s.EdgeCache {
		cache[i] = uint8(v)
	}
	return &adaptiveState[uint8]{assign: s.Assign, cache: cache}
}

func syncFromAdaptive8(s *State, st *adaptiveState[uint8]) {
	s.Assign = st.assign
	for i, v := range st.cache {
		s.EdgeCache[i] = int32(v)
	}
}

func stateToAdaptive32(s *State) *adaptiveState[uint32] {
	cache := make([]uint32, len(s.EdgeCache))
	for i, v := range s.EdgeCache {
		cache[i] = uint32(v)
	}
	return &adaptiveState[uint32]{assign: s.Assign, cache: cache}
}

func syncFromAdaptive32(s *State, st *adaptiveState[uint32]) {
	s.Assign = st.assign
	for i, v := range st.cache {
		s.EdgeCache[i] = int32(v)
	}
}

func adaptiveMaxDelta8(m *adaptivePubo[uint8]) float64 {
	var maxSum float64
	for v := range m.names {
		var sum float64
		for _, ei := range m.nodeEdges[v] {
			c := m.coeffOf(ei)
			if c < 0 {
				c = -c
			}
			sum += c
		}
		if sum > maxSum {
			maxSum = sum
		}
	}
	return maxSum
}

func adaptiveMinDelta8(m *adaptivePubo[uint8]) float64 {
	return adaptiveMinDeltaGeneric(m.compact.Coeffs)
}

func adaptiveMaxDelta32(m *adaptivePubo[uint32]) float64 {
	var maxSum float64
	for v := range m.names {
		var sum float64
		for _, ei := range m.nodeEdges[v] {
			c := m.coeffOf(ei)
			if c < 0 {
				c = -c
			}
			sum += c
		}
		if sum > maxSum {
			maxSum = sum
		}
	}
	return maxSum
}

func adaptiveMinDelta32(m *adaptivePubo[uint32]) float64 {
	return adaptiveMinDeltaGeneric(m.compact.Coeffs)
}

func adaptiveMinDeltaGeneric(coeffs []float64) float64 {
	min := -1.0
	for _, c := range coeffs {
		if c < 0 {
			c = -c
		}
		if c == 0 {
			continue
		}
		if min < 0 || c < min {
			min = c
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
