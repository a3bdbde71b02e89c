package model

import (
	"container/heap"
	"math"

	"github.com/qiotoolkit/qiotoolkit/graph"
)

// estimateMaxAbsDelta bounds the largest possible |Δcost| from flipping any
// single variable: the triangle-inequality sum of incident edge coupling
// magnitudes, scaled by perFlipFactor (2 for a spin flip which can move a
// term's value by up to 2*|c|, 1 for a boolean flip). Faces are not read
// here; GroupedModel.EstimateMaxCostDiff calls this on the graph of face
// cross-terms built by expandFacesToQuadratic, since a face's quadratic
// form needs pairwise cross-terms, not just its linear coefficients.
func estimateMaxAbsDelta(g *graph.Graph, perFlipFactor float64) float64 {
	if len(g.Nodes) == 0 {
		return 0
	}
	var maxSum float64
	for _, n := range g.Nodes {
		var sum float64
		for _, ei := range n.Edges {
			sum += math.Abs(g.Edges[ei].Coeff)
		}
		if sum > maxSum {
			maxSum = sum
		}
	}
	return perFlipFactor * maxSum
}

// estimateMinAbsDelta lower-bounds the smallest nonzero |Δcost| using the
// Karmarkar-Karp least-difference heuristic over the sorted absolute
// coefficient magnitudes (spec §4.1): repeatedly replace the two largest
// magnitudes with their difference, which is the classic KK
// number-partitioning reduction, then scale by perFlipFactor.
func estimateMinAbsDelta(g *graph.Graph, perFlipFactor float64) float64 {
	if len(g.Edges) == 0 {
		return 0
	}
	h := &kkHeap{}
	for _, e := range g.Edges {
		mag := math.Abs(e.Coeff)
		if mag > 0 {
			heap.Push(h, mag)
		}
	}
	if h.Len() == 0 {
		return 0
	}
	for h.Len() > 1 {
		a := heap.Pop(h).(float64)
		b := heap.Pop(h).(float64)
		diff := a - b
		if diff > 1e-12 {
			heap.Push(h, diff)
		}
	}
	if h.Len() == 0 {
		return 0
	}
	return perFlipFactor * (*h)[0]
}

// kkHeap is a max-heap of float64 magnitudes used by the Karmarkar-Karp
// reduction above.
type kkHeap []float64

func (h kkHeap) Len() int            { return len(h) }
func (h kkHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h kkHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *kkHeap) Push(x any)         { *h = append(*h, x.(float64)) }
func (h *kkHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
