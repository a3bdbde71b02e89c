package model

import (
	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/rng"
)

// IsingModel evaluates cost over spin variables s_i in {-1,+1}. Assign[i]
// stores "is -1" as a 0/1 bit; a term's value is c_e * Π s_i, which reduces
// to c_e if an even number of participants are -1 and -c_e if odd — the
// XOR-of-participating-bits activity test. EdgeCache[e] caches that parity
// so CalculateCostDifference only has to flip a bit per incident edge.
type IsingModel struct {
	g          *graph.Graph
	initial    map[string]float64
	hasInitial bool
}

// NewIsingModel wraps a finalized graph as an Ising cost model.
func NewIsingModel(g *graph.Graph) *IsingModel {
	return &IsingModel{g: g}
}

// SetInitialConfiguration records the problem document's
// initial_configuration so RandomState can return it deterministically.
func (m *IsingModel) SetInitialConfiguration(cfg map[string]float64) {
	m.initial = cfg
	m.hasInitial = len(cfg) > 0
}

func (m *IsingModel) HasInitialConfiguration() bool { return m.hasInitial }

// stateFromAssign allocates a State with caches sized for g, parity/counters
// computed from assign.
func (m *IsingModel) stateFromAssign(assign []uint8) *State {
	s := &State{
		Assign:    assign,
		EdgeCache: make([]int32, len(m.g.Edges)),
	}
	for ei, e := range m.g.Edges {
		if e.FaceID != -1 {
			continue
		}
		parity := int32(0)
		for _, v := range e.Vars {
			parity ^= int32(assign[v])
		}
		s.EdgeCache[ei] = parity
	}
	return s
}

func (m *IsingModel) RandomState(stream *rng.Stream) *State {
	n := m.g.N()
	assign := make([]uint8, n)
	if m.hasInitial {
		for i, node := range m.g.Nodes {
			if v, ok := m.initial[node.Name]; ok {
				if v < 0 {
					assign[i] = 1
				}
			}
		}
		return m.stateFromAssign(assign)
	}
	for i := 0; i < n; i++ {
		if stream.Bool() {
			assign[i] = 1
		}
	}
	return m.stateFromAssign(assign)
}

func (m *IsingModel) RandomTransition(state *State, stream *rng.Stream) Transition {
	return Transition{Var: stream.Intn(m.g.N())}
}

func (m *IsingModel) CalculateCost(s *State) float64 {
	total := m.g.Stats.ConstCost
	for ei := range m.g.Edges {
		e := &m.g.Edges[ei]
		if e.FaceID != -1 {
			continue
		}
		total += termValue(e.Coeff, s.EdgeCache[ei])
	}
	return total
}

func termValue(coeff float64, parity int32) float64 {
	if parity%2 == 0 {
		return coeff
	}
	return -coeff
}

func (m *IsingModel) CalculateCostDifference(s *State, t Transition) float64 {
	var delta float64
	for _, ei := range m.g.Nodes[t.Var].Edges {
		e := &m.g.Edges[ei]
		if e.FaceID != -1 {
			continue
		}
		oldParity := s.EdgeCache[ei]
		newParity := oldParity ^ 1
		delta += termValue(e.Coeff, newParity) - termValue(e.Coeff, oldParity)
	}
	return delta
}

func (m *IsingModel) ApplyTransition(t Transition, s *State) {
	s.Assign[t.Var] ^= 1
	for _, ei := range m.g.Nodes[t.Var].Edges {
		if m.g.Edges[ei].FaceID != -1 {
			continue
		}
		s.EdgeCache[ei] ^= 1
	}
}

func (m *IsingModel) SweepSize() int { return m.g.N() }

func (m *IsingModel) StateMemoryEstimate() int64 {
	return int64(len(m.g.Nodes)) + 4*int64(len(m.g.Edges))
}

func (m *IsingModel) StateOnlyMemoryEstimate() int64 {
	return int64(len(m.g.Nodes))
}

func (m *IsingModel) EstimateMaxCostDiff() float64 { return estimateMaxAbsDelta(m.g, 2) }
func (m *IsingModel) EstimateMinCostDiff() float64 { return estimateMinAbsDelta(m.g, 2) }

func (m *IsingModel) IsRescaled() bool     { return m.g.Stats.RescaleFactor != 1 }
func (m *IsingModel) Rescale()             { m.g.Rescale() }
func (m *IsingModel) ScaleFactor() float64 { return m.g.Stats.RescaleFactor }

func (m *IsingModel) Render(s *State) map[string]float64 {
	out := make(map[string]float64, len(m.g.Nodes))
	for i, n := range m.g.Nodes {
		if s.Assign[i] == 1 {
			out[n.Name] = -1
		} else {
			out[n.Name] = 1
		}
	}
	return out
}
