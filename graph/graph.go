// Package graph is the hyperedge term store shared by every cost-function
// model: an arena of Nodes and Edges with bidirectional adjacency, plus the
// running statistics (locality, coupling magnitude, rescale factor)
// accumulated during construction. Node and Edge cross-references resolve
// to integer indices into the arena slices, never pointers, so the whole
// structure stays trivially cloneable and safe to share read-only across
// replicas.
package graph

import (
	"fmt"
	"math"

	"github.com/qiotoolkit/qiotoolkit/qerrors"
)

// Edge is one polynomial term: a coefficient and the (deduplicated) set of
// variable node indices it references. FaceID is -1 for a standalone
// edge and the face index for an SLC sub-edge.
type Edge struct {
	Coeff float64
	Vars  []int
	FaceID int
}

// Locality returns the number of variables this edge references.
func (e *Edge) Locality() int { return len(e.Vars) }

// Node is one problem variable. Edges lists, for every edge this variable
// participates in, the edge's index into Graph.Edges — exactly once per
// edge (invariant (b) in spec §3).
type Node struct {
	// Name is the original (user-facing) variable identifier, preserved
	// across the dense renumbering so output can be rendered back.
	Name  string
	Edges []int
}

// Face is an SLC (squared linear combination) group: C * (sum w_i x_i + w0)^2.
// LinearEdges indexes into Graph.Edges for the locality-1 sub-terms that
// make up the sum; Constant is the w0 term (0 if absent).
type Face struct {
	Coeff    float64
	Constant float64
	LinearEdges []int
}

// Stats accumulates the graph statistics maintained during construction
// (spec §3 "Graph statistics").
type Stats struct {
	MinLocality   int
	MaxLocality   int
	TotalLocality int
	NumEdges      int
	DependentPairs int64
	MinCoupling   float64
	MaxCoupling   float64
	ConstCost     float64
	RescaleFactor float64
}

// AvgLocality returns the average term locality, or 0 for an empty graph.
func (s *Stats) AvgLocality() float64 {
	if s.NumEdges == 0 {
		return 0
	}
	return float64(s.TotalLocality) / float64(s.NumEdges)
}

// Graph is the edge-list + adjacency store built from a parsed problem
// document. It is immutable after Finalize and shared by reference across
// a solver run's replicas.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Faces []Face
	Stats Stats

	// AllowDupMerge controls whether AddTerm merges repeated variable ids
	// within one term (true) or rejects the term (false), per spec §3.
	AllowDupMerge bool

	nameToIndex map[string]int
	finalized   bool
}

// New creates an empty Graph. allowDupMerge mirrors the parse-time
// `allow_dup_merge` flag.
func New(allowDupMerge bool) *Graph {
	return &Graph{
		AllowDupMerge: allowDupMerge,
		nameToIndex:   make(map[string]int),
		Stats:         Stats{MinLocality: math.MaxInt32, MinCoupling: math.MaxFloat64},
	}
}

// NodeIndex returns the dense index for a variable name, creating the node
// if it hasn't been seen yet.
func (g *Graph) NodeIndex(name string) int {
	if idx, ok := g.nameToIndex[name]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Name: name})
	g.nameToIndex[name] = idx
	return idx
}

// N returns the number of distinct variables.
func (g *Graph) N() int { return len(g.Nodes) }

// AddTerm adds one term with coefficient c over the variable names in ids.
// An empty ids is a constant term: it is folded into Stats.ConstCost and
// never becomes an Edge. Repeated ids within one term are merged (XOR for
// odd/even cancellation is the caller's concern; here merge means "treat
// the repeated id as a single participant") if AllowDupMerge, otherwise
// the term is rejected with qerrors.DuplicatedVariable.
func (g *Graph) AddTerm(c float64, ids []string) error {
	if len(ids) == 0 {
		g.Stats.ConstCost += c
		return nil
	}

	seen := make(map[int]bool, len(ids))
	vars := make([]int, 0, len(ids))
	for _, name := range ids {
		idx := g.NodeIndex(name)
		if seen[idx] {
			if !g.AllowDupMerge {
				return qerrors.New(qerrors.DuplicatedVariable, "variable %q repeated within one term", name)
			}
			continue
		}
		seen[idx] = true
		vars = append(vars, idx)
	}
	if len(vars) == 0 {
		// All ids collapsed into one repeated variable; only possible via
		// merge, and effectively this is now locality-1 or constant.
		g.Stats.ConstCost += c
		return nil
	}

	edgeIdx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{Coeff: c, Vars: vars, FaceID: -1})
	for _, v := range vars {
		g.Nodes[v].Edges = append(g.Nodes[v].Edges, edgeIdx)
	}

	loc := len(vars)
	g.Stats.NumEdges++
	g.Stats.TotalLocality += loc
	if loc < g.Stats.MinLocality {
		g.Stats.MinLocality = loc
	}
	if loc > g.Stats.MaxLocality {
		g.Stats.MaxLocality = loc
	}
	g.Stats.DependentPairs += int64(loc * (loc - 1) / 2)

	mag := math.Abs(c)
	if mag < g.Stats.MinCoupling {
		g.Stats.MinCoupling = mag
	}
	if mag > g.Stats.MaxCoupling {
		g.Stats.MaxCoupling = mag
	}
	return nil
}

// LinearTerm is one weighted sub-term of an SLC face: w * x_<Name>.
type LinearTerm struct {
	Name   string
	Weight float64
}

// AddFace adds an SLC face grouping the given ordered (weight,
// variable-name) sub-terms plus an optional constant w0, with overall
// coefficient c. Per spec §3, a face may not nest another face and each
// weighted sub-term must be locality-1 (pre-combined like-terms are the
// caller's responsibility, via AllowDupMerge on the underlying variable
// names). Terms are applied in slice order so construction — and
// therefore variable renumbering — is deterministic (P3).
func (g *Graph) AddFace(c float64, w0 float64, terms []LinearTerm) (int, error) {
	faceIdx := len(g.Faces)
	face := Face{Coeff: c, Constant: w0}
	for _, term := range terms {
		name, w := term.Name, term.Weight
		idx := g.NodeIndex(name)
		edgeIdx := len(g.Edges)
		g.Edges = append(g.Edges, Edge{Coeff: w, Vars: []int{idx}, FaceID: faceIdx})
		g.Nodes[idx].Edges = append(g.Nodes[idx].Edges, edgeIdx)
		face.LinearEdges = append(face.LinearEdges, edgeIdx)

		g.Stats.NumEdges++
		g.Stats.TotalLocality++
		if 1 < g.Stats.MinLocality {
			g.Stats.MinLocality = 1
		}
		if 1 > g.Stats.MaxLocality {
			g.Stats.MaxLocality = 1
		}
		mag := math.Abs(w)
		if mag < g.Stats.MinCoupling {
			g.Stats.MinCoupling = mag
		}
		if mag > g.Stats.MaxCoupling {
			g.Stats.MaxCoupling = mag
		}
	}
	g.Faces = append(g.Faces, face)
	return faceIdx, nil
}

// Finalize computes the rescale factor (1/max|c_e| if >1, else 1) and
// normalizes the min/max-locality sentinels for an empty graph. Must be
// called once after all AddTerm/AddFace calls and before the graph is
// handed to a model.
func (g *Graph) Finalize() {
	if g.finalized {
		return
	}
	g.finalized = true
	if g.Stats.NumEdges == 0 {
		g.Stats.MinLocality = 0
		g.Stats.MaxLocality = 0
		g.Stats.MinCoupling = 0
	}
	if g.Stats.MaxCoupling > 1 {
		g.Stats.RescaleFactor = 1 / g.Stats.MaxCoupling
	} else {
		g.Stats.RescaleFactor = 1
	}
}

// Validate checks invariants (a) and (b) from spec §3: every node-listed
// edge index is valid, and every node appears in each of its listed edges
// exactly once.
func (g *Graph) Validate() error {
	for ni, n := range g.Nodes {
		for _, ei := range n.Edges {
			if ei < 0 || ei >= len(g.Edges) {
				return fmt.Errorf("graph: node %d lists out-of-range edge %d", ni, ei)
			}
			count := 0
			for _, v := range g.Edges[ei].Vars {
				if v == ni {
					count++
				}
			}
			if count != 1 {
				return fmt.Errorf("graph: node %d appears %d times in edge %d, want 1", ni, count, ei)
			}
		}
	}
	return nil
}

// Rescale multiplies every edge coefficient (and face coefficient) by the
// Stats.RescaleFactor, for models whose IsRescaled() is true.
func (g *Graph) Rescale() {
	if g.Stats.RescaleFactor == 1 {
		return
	}
	for i := range g.Edges {
		g.Edges[i].Coeff *= g.Stats.RescaleFactor
	}
	for i := range g.Faces {
		g.Faces[i].Coeff *= g.Stats.RescaleFactor
	}
	g.Stats.ConstCost *= g.Stats.RescaleFactor
}
