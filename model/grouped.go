package model

import (
	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/rng"
)

// Base is the subset of CostModel a GroupedModel wraps to get its
// variable encoding (spin vs boolean) and standalone-edge cost. Ising and
// Pubo both satisfy it.
type Base interface {
	CostModel
	// flipDelta returns the change in x_v (not the cost) produced by
	// flipping variable v, used to keep a face's running linear sum in
	// sync: +-1 for a boolean flip, +-2 for a spin flip.
	flipDelta(s *State, v int) float64
}

func (m *PuboModel) flipDelta(s *State, v int) float64 {
	if s.Assign[v] == 0 {
		return 1
	}
	return -1
}

func (m *IsingModel) flipDelta(s *State, v int) float64 {
	// Assign[v]==1 means spin -1; flipping to 0 means spin +1: Δx = +2.
	if s.Assign[v] == 1 {
		return 2
	}
	return -2
}

// GroupedModel adds SLC (squared linear combination) faces on top of a
// base Ising/Pubo model: cost = base's standalone-edge cost + Σ_f
// C_f*(Σ w_i x_i + w0_f)^2. FaceSum caches Σ w_i x_i per face so a flip
// only has to touch the faces the flipped variable participates in.
type GroupedModel struct {
	base Base
	g    *graph.Graph
}

// NewGroupedModel wraps base (already built over g, including g's Faces)
// with SLC face evaluation.
func NewGroupedModel(base Base, g *graph.Graph) *GroupedModel {
	return &GroupedModel{base: base, g: g}
}

func (m *GroupedModel) HasInitialConfiguration() bool { return m.base.HasInitialConfiguration() }

func (m *GroupedModel) initFaceSums(s *State) {
	s.FaceSum = make([]float64, len(m.g.Faces))
	for fi, face := range m.g.Faces {
		var sum float64
		for _, ei := range face.LinearEdges {
			e := &m.g.Edges[ei]
			v := e.Vars[0]
			x := m.varValue(s, v)
			sum += e.Coeff * x
		}
		s.FaceSum[fi] = sum
	}
}

// varValue returns the current numeric value of variable v under the base
// model's encoding (spin ±1 for Ising, boolean 0/1 for Pubo).
func (m *GroupedModel) varValue(s *State, v int) float64 {
	switch m.base.(type) {
	case *IsingModel:
		if s.Assign[v] == 1 {
			return -1
		}
		return 1
	default:
		return float64(s.Assign[v])
	}
}

func (m *GroupedModel) RandomState(stream *rng.Stream) *State {
	s := m.base.RandomState(stream)
	m.initFaceSums(s)
	return s
}

func (m *GroupedModel) RandomTransition(state *State, stream *rng.Stream) Transition {
	return m.base.RandomTransition(state, stream)
}

func (m *GroupedModel) CalculateCost(s *State) float64 {
	total := m.base.CalculateCost(s)
	for fi, face := range m.g.Faces {
		sum := s.FaceSum[fi] + face.Constant
		total += face.Coeff * sum * sum
	}
	return total
}

func (m *GroupedModel) CalculateCostDifference(s *State, t Transition) float64 {
	delta := m.base.CalculateCostDifference(s, t)
	dx := m.base.flipDelta(s, t.Var)
	for _, faceIdx := range m.facesOf(t.Var) {
		face := &m.g.Faces[faceIdx]
		w := m.weightInFace(*face, t.Var)
		oldSum := s.FaceSum[faceIdx] + face.Constant
		newSum := s.FaceSum[faceIdx] + w*dx + face.Constant
		delta += face.Coeff * (newSum*newSum - oldSum*oldSum)
	}
	return delta
}

func (m *GroupedModel) ApplyTransition(t Transition, s *State) {
	dx := m.base.flipDelta(s, t.Var)
	for _, faceIdx := range m.facesOf(t.Var) {
		face := &m.g.Faces[faceIdx]
		w := m.weightInFace(*face, t.Var)
		s.FaceSum[faceIdx] += w * dx
	}
	m.base.ApplyTransition(t, s)
}

// facesOf returns the indices of faces variable v participates in, by
// scanning v's incident edges for a FaceID.
func (m *GroupedModel) facesOf(v int) []int {
	var faces []int
	for _, ei := range m.g.Nodes[v].Edges {
		if fid := m.g.Edges[ei].FaceID; fid != -1 {
			faces = append(faces, fid)
		}
	}
	return faces
}

func (m *GroupedModel) weightInFace(face graph.Face, v int) float64 {
	for _, ei := range face.LinearEdges {
		e := &m.g.Edges[ei]
		if e.Vars[0] == v {
			return e.Coeff
		}
	}
	return 0
}

func (m *GroupedModel) SweepSize() int { return m.base.SweepSize() }

func (m *GroupedModel) StateMemoryEstimate() int64 {
	return m.base.StateMemoryEstimate() + 8*int64(len(m.g.Faces))
}

func (m *GroupedModel) StateOnlyMemoryEstimate() int64 { return m.base.StateOnlyMemoryEstimate() }

// EstimateMaxCostDiff expands each face to its quadratic cross-term form
// before applying the triangle-inequality bound, per spec §4.1 ("expanding
// SLC terms to quadratic form for tightness"): a face contributes, for
// each pair of participating variables, a cross coefficient 2*C*w_i*w_j,
// collected into a synthetic graph of face cross-terms only. The result is
// the larger of that graph's bound and the base model's own estimate.
func (m *GroupedModel) EstimateMaxCostDiff() float64 {
	expanded := expandFacesToQuadratic(m.g)
	base := estimateMaxAbsDelta(expanded, 2)
	if baseOnly := m.base.EstimateMaxCostDiff(); baseOnly > base {
		return baseOnly
	}
	return base
}

func (m *GroupedModel) EstimateMinCostDiff() float64 {
	return m.base.EstimateMinCostDiff()
}

func (m *GroupedModel) IsRescaled() bool     { return m.base.IsRescaled() }
func (m *GroupedModel) Rescale()             { m.base.Rescale() }
func (m *GroupedModel) ScaleFactor() float64 { return m.base.ScaleFactor() }

func (m *GroupedModel) Render(s *State) map[string]float64 { return m.base.Render(s) }

// expandFacesToQuadratic builds a synthetic graph whose edges are the
// pairwise cross-terms 2*C_f*w_i*w_j of every face in g, for use by the
// max-Δ triangle-inequality estimator.
func expandFacesToQuadratic(g *graph.Graph) *graph.Graph {
	out := graph.New(true)
	// Pre-register nodes in the same order as g so node index v in `out`
	// matches node index v in g.
	for _, n := range g.Nodes {
		out.NodeIndex(n.Name)
	}
	for _, face := range g.Faces {
		for i := 0; i < len(face.LinearEdges); i++ {
			ei := face.LinearEdges[i]
			ni := g.Edges[ei].Vars[0]
			wi := g.Edges[ei].Coeff
			for j := i + 1; j < len(face.LinearEdges); j++ {
				ej := face.LinearEdges[j]
				nj := g.Edges[ej].Vars[0]
				wj := g.Edges[ej].Coeff
				_ = out.AddTerm(2*face.Coeff*wi*wj, []string{g.Nodes[ni].Name, g.Nodes[nj].Name})
			}
		}
	}
	out.Finalize()
	return out
}
