package model

import (
	"strconv"

	"github.com/qiotoolkit/qiotoolkit/rng"
)

// Lit is one literal in a MaxSat clause: variable index Var, negated if Neg.
type Lit struct {
	Var int
	Neg bool
}

// Clause is one soft clause: pay Weight if every literal in Lits is false.
type Clause struct {
	Weight float64
	Lits   []Lit
}

// MaxSatModel evaluates weighted partial MaxSat cost: the sum of weights
// of currently-unsatisfied clauses. DIMACS/WCNF *parsing* is explicitly
// out of scope (spec §1); this model consumes clauses already parsed into
// Clause values by an external adapter. EdgeCache[c] caches the count of
// currently-satisfied literals in clause c; a clause is unsatisfied (and
// pays its weight) exactly when that count is 0.
type MaxSatModel struct {
	names   []string
	clauses []Clause
	// byVar maps variable index to the clause indices it appears in.
	byVar [][]int
}

// NewMaxSatModel builds a model over numVars variables (names "1".."N" by
// convention, renumbered the same way graph.Graph does) and the given
// clauses.
func NewMaxSatModel(numVars int, clauses []Clause) *MaxSatModel {
	names := make([]string, numVars)
	for i := range names {
		names[i] = strconv.Itoa(i + 1)
	}
	byVar := make([][]int, numVars)
	for ci, c := range clauses {
		seen := make(map[int]bool)
		for _, l := range c.Lits {
			if !seen[l.Var] {
				byVar[l.Var] = append(byVar[l.Var], ci)
				seen[l.Var] = true
			}
		}
	}
	return &MaxSatModel{names: names, clauses: clauses, byVar: byVar}
}

func (m *MaxSatModel) HasInitialConfiguration() bool { return false }

func (m *MaxSatModel) literalSatisfied(assign []uint8, l Lit) bool {
	v := assign[l.Var] != 0
	if l.Neg {
		return !v
	}
	return v
}

func (m *MaxSatModel) stateFromAssign(assign []uint8) *State {
	s := &State{Assign: assign, EdgeCache: make([]int32, len(m.clauses))}
	for ci, c := range m.clauses {
		var n int32
		for _, l := range c.Lits {
			if m.literalSatisfied(assign, l) {
				n++
			}
		}
		s.EdgeCache[ci] = n
	}
	return s
}

func (m *MaxSatModel) RandomState(stream *rng.Stream) *State {
	assign := make([]uint8, len(m.names))
	for i := range assign {
		if stream.Bool() {
			assign[i] = 1
		}
	}
	return m.stateFromAssign(assign)
}

func (m *MaxSatModel) RandomTransition(state *State, stream *rng.Stream) Transition {
	return Transition{Var: stream.Intn(len(m.names))}
}

func (m *MaxSatModel) CalculateCost(s *State) float64 {
	var total float64
	for ci, c := range m.clauses {
		if s.EdgeCache[ci] == 0 {
			total += c.Weight
		}
	}
	return total
}

func (m *MaxSatModel) CalculateCostDifference(s *State, t Transition) float64 {
	var delta float64
	for _, ci := range m.byVar[t.Var] {
		c := &m.clauses[ci]
		oldSatisfied := s.EdgeCache[ci] > 0
		var newCount int32 = s.EdgeCache[ci]
		for _, l := range c.Lits {
			if l.Var != t.Var {
				continue
			}
			wasSat := m.literalSatisfied(s.Assign, l)
			if wasSat {
				newCount--
			} else {
				newCount++
			}
		}
		newSatisfied := newCount > 0
		if oldSatisfied == newSatisfied {
			continue
		}
		if newSatisfied {
			delta -= c.Weight
		} else {
			delta += c.Weight
		}
	}
	return delta
}

func (m *MaxSatModel) ApplyTransition(t Transition, s *State) {
	for _, ci := range m.byVar[t.Var] {
		c := &m.clauses[ci]
		for _, l := range c.Lits {
			if l.Var != t.Var {
				continue
			}
			wasSat := m.literalSatisfied(s.Assign, l)
			if wasSat {
				s.EdgeCache[ci]--
			} else {
				s.EdgeCache[ci]++
			}
		}
	}
	s.Assign[t.Var] ^= 1
}

func (m *MaxSatModel) SweepSize() int { return len(m.names) }

func (m *MaxSatModel) StateMemoryEstimate() int64 {
	return int64(len(m.names)) + 4*int64(len(m.clauses))
}
func (m *MaxSatModel) StateOnlyMemoryEstimate() int64 { return int64(len(m.names)) }

func (m *MaxSatModel) EstimateMaxCostDiff() float64 {
	var maxSum float64
	for v := range m.names {
		var sum float64
		for _, ci := range m.byVar[v] {
			sum += m.clauses[ci].Weight
		}
		if sum > maxSum {
			maxSum = sum
		}
	}
	return maxSum
}

func (m *MaxSatModel) EstimateMinCostDiff() float64 {
	min := -1.0
	for _, c := range m.clauses {
		if c.Weight <= 0 {
			continue
		}
		if min < 0 || c.Weight < min {
			min = c.Weight
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

func (m *MaxSatModel) IsRescaled() bool     { return false }
func (m *MaxSatModel) Rescale()             {}
func (m *MaxSatModel) ScaleFactor() float64 { return 1 }

func (m *MaxSatModel) Render(s *State) map[string]float64 {
	out := make(map[string]float64, len(m.names))
	for i, name := range m.names {
		out[name] = float64(s.Assign[i])
	}
	return out
}
