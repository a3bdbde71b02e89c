package model

import (
	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/rng"
)

// PuboModel evaluates cost over boolean variables x_i in {0,1}. Assign[i]
// stores x_i directly; a term contributes c_e only when every participant
// is 1 (AND-of-not-zero). EdgeCache[e] caches the count of currently-zero
// participants so the term is active exactly when EdgeCache[e] == 0.
type PuboModel struct {
	g          *graph.Graph
	initial    map[string]float64
	hasInitial bool
}

func NewPuboModel(g *graph.Graph) *PuboModel {
	return &PuboModel{g: g}
}

func (m *PuboModel) SetInitialConfiguration(cfg map[string]float64) {
	m.initial = cfg
	m.hasInitial = len(cfg) > 0
}

func (m *PuboModel) HasInitialConfiguration() bool { return m.hasInitial }

func (m *PuboModel) stateFromAssign(assign []uint8) *State {
	s := &State{
		Assign:    assign,
		EdgeCache: make([]int32, len(m.g.Edges)),
	}
	for ei, e := range m.g.Edges {
		if e.FaceID != -1 {
			continue
		}
		var zeroCount int32
		for _, v := range e.Vars {
			if assign[v] == 0 {
				zeroCount++
			}
		}
		s.EdgeCache[ei] = zeroCount
	}
	return s
}

func (m *PuboModel) RandomState(stream *rng.Stream) *State {
	n := m.g.N()
	assign := make([]uint8, n)
	if m.hasInitial {
		for i, node := range m.g.Nodes {
			if v, ok := m.initial[node.Name]; ok && v != 0 {
				assign[i] = 1
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

func (m *PuboModel) RandomTransition(state *State, stream *rng.Stream) Transition {
	return Transition{Var: stream.Intn(m.g.N())}
}

func (m *PuboModel) CalculateCost(s *State) float64 {
	total := m.g.Stats.ConstCost
	for ei := range m.g.Edges {
		e := &m.g.Edges[ei]
		if e.FaceID != -1 {
			continue
		}
		if s.EdgeCache[ei] == 0 {
			total += e.Coeff
		}
	}
	return total
}

func (m *PuboModel) CalculateCostDifference(s *State, t Transition) float64 {
	var delta float64
	turningOn := s.Assign[t.Var] == 0
	for _, ei := range m.g.Nodes[t.Var].Edges {
		e := &m.g.Edges[ei]
		if e.FaceID != -1 {
			continue
		}
		oldActive := s.EdgeCache[ei] == 0
		var newCount int32
		if turningOn {
			newCount = s.EdgeCache[ei] - 1
		} else {
			newCount = s.EdgeCache[ei] + 1
		}
		newActive := newCount == 0
		if oldActive == newActive {
			continue
		}
		if newActive {
			delta += e.Coeff
		} else {
			delta -= e.Coeff
		}
	}
	return delta
}

func (m *PuboModel) ApplyTransition(t Transition, s *State) {
	turningOn := s.Assign[t.Var] == 0
	for _, ei := range m.g.Nodes[t.Var].Edges {
		if m.g.Edges[ei].FaceID != -1 {
			continue
		}
		if turningOn {
			s.EdgeCache[ei]--
		} else {
			s.EdgeCache[ei]++
		}
	}
	s.Assign[t.Var] ^= 1
}

func (m *PuboModel) SweepSize() int { return m.g.N() }

func (m *PuboModel) StateMemoryEstimate() int64 {
	return int64(len(m.g.Nodes)) + 4*int64(len(m.g.Edges))
}

func (m *PuboModel) StateOnlyMemoryEstimate() int64 {
	return int64(len(m.g.Nodes))
}

func (m *PuboModel) EstimateMaxCostDiff() float64 { return estimateMaxAbsDelta(m.g, 1) }
func (m *PuboModel) EstimateMinCostDiff() float64 { return estimateMinAbsDelta(m.g, 1) }

func (m *PuboModel) IsRescaled() bool     { return m.g.Stats.RescaleFactor != 1 }
func (m *PuboModel) Rescale()             { m.g.Rescale() }
func (m *PuboModel) ScaleFactor() float64 { return m.g.Stats.RescaleFactor }

func (m *PuboModel) Render(s *State) map[string]float64 {
	out := make(map[string]float64, len(m.g.Nodes))
	for i, n := range m.g.Nodes {
		out[n.Name] = float64(s.Assign[i])
	}
	return out
}
