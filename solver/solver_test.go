package solver

import (
	"testing"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/stretchr/testify/require"
)

func buildRing(t *testing.T, n int) (*graph.Graph, *model.IsingModel) {
	t.Helper()
	g := graph.New(false)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = string(rune('a' + i))
	}
	for i := 0; i < n; i++ {
		require.NoError(t, g.AddTerm(1.0, []string{names[i], names[(i+1)%n]}))
	}
	g.Finalize()
	return g, model.NewIsingModel(g)
}

func TestPoolDedupsAndKeepsBest(t *testing.T) {
	_, m := buildRing(t, 4)
	f := rng.NewForker(7)
	stream := f.ForReplica(0)
	p := NewPool(2)

	s1 := m.RandomState(stream)
	p.Offer(m.CalculateCost(s1), m, s1)
	// Offering the identical configuration again must not grow the pool.
	p.Offer(m.CalculateCost(s1), m, s1)
	require.Len(t, p.Best(), 1)

	s2 := s1.Clone()
	m.ApplyTransition(model.Transition{Var: 0}, s2)
	p.Offer(m.CalculateCost(s2), m, s2)
	require.Len(t, p.Best(), 2)

	s3 := s2.Clone()
	m.ApplyTransition(model.Transition{Var: 1}, s3)
	p.Offer(m.CalculateCost(s3), m, s3)
	require.Len(t, p.Best(), 2)
	require.True(t, p.Best()[0].Cost <= p.Best()[1].Cost)
}

func TestPoolMinimumSizeOne(t *testing.T) {
	p := NewPool(0)
	require.Equal(t, 1, p.k)
}
