package model

import (
	"math"
	"strconv"
	"testing"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/stretchr/testify/require"
)

func ringNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

func buildRingIsing(t *testing.T, n int) (*graph.Graph, *IsingModel) {
	t.Helper()
	g := graph.New(false)
	names := ringNames(n)
	for i := range names {
		j := (i + 1) % n
		require.NoError(t, g.AddTerm(1, []string{names[i], names[j]}))
	}
	g.Finalize()
	return g, NewIsingModel(g)
}

// S1: ring-Ising, 10 spins, all c=1.
func TestS1RingIsing(t *testing.T) {
	g, m := buildRingIsing(t, 10)
	allPlus := make([]uint8, g.N())
	s := m.stateFromAssign(allPlus)

	cost := m.CalculateCost(s)
	require.Equal(t, 10.0, cost)

	delta := m.CalculateCostDifference(s, Transition{Var: 0})
	require.Equal(t, -4.0, delta)

	m.ApplyTransition(Transition{Var: 0}, s)
	require.Equal(t, 6.0, m.CalculateCost(s))
}

func TestS1RingIsingGroundState(t *testing.T) {
	_, m := buildRingIsing(t, 10)
	n := 10
	assign := make([]uint8, n)
	for i := 0; i < n; i += 2 {
		assign[i] = 1 // alternate spins: ground state of an antiferromagnet-like even ring of all +1 couplings
	}
	s := m.stateFromAssign(assign)
	require.Equal(t, -10.0, m.CalculateCost(s))
}

// P1: Δcost matches the full re-evaluation within tolerance, for many
// random states and transitions.
func TestP1CostDifferenceConsistency(t *testing.T) {
	g := graph.New(false)
	names := []string{"a", "b", "c", "d", "e"}
	_ = g.AddTerm(2.0, []string{"a", "b"})
	_ = g.AddTerm(-1.5, []string{"b", "c", "d"})
	_ = g.AddTerm(0.75, []string{"d", "e"})
	_ = g.AddTerm(3.0, []string{"a", "e", "c"})
	g.Finalize()
	_ = names

	m := NewIsingModel(g)
	f := rng.NewForker(1234)
	stream := f.ForReplica(0)

	for trial := 0; trial < 200; trial++ {
		s := m.RandomState(stream)
		tr := m.RandomTransition(s, stream)
		before := m.CalculateCost(s)
		delta := m.CalculateCostDifference(s, tr)
		m.ApplyTransition(tr, s)
		after := m.CalculateCost(s)
		diff := math.Abs(after - before - delta)
		tol := 1e-9 * (1 + math.Abs(before))
		if diff > tol {
			t.Fatalf("trial %d: |after-before-delta|=%v exceeds tolerance %v", trial, diff, tol)
		}
	}
}

// P1 for Pubo.
func TestP1CostDifferenceConsistencyPubo(t *testing.T) {
	g := graph.New(false)
	_ = g.AddTerm(2.0, []string{"a", "b"})
	_ = g.AddTerm(-1.5, []string{"b", "c", "d"})
	_ = g.AddTerm(0.75, []string{"d", "e"})
	g.Finalize()

	m := NewPuboModel(g)
	f := rng.NewForker(99)
	stream := f.ForReplica(0)

	for trial := 0; trial < 200; trial++ {
		s := m.RandomState(stream)
		tr := m.RandomTransition(s, stream)
		before := m.CalculateCost(s)
		delta := m.CalculateCostDifference(s, tr)
		m.ApplyTransition(tr, s)
		after := m.CalculateCost(s)
		diff := math.Abs(after - before - delta)
		tol := 1e-9 * (1 + math.Abs(before))
		if diff > tol {
			t.Fatalf("trial %d: diff %v exceeds tolerance %v", trial, diff, tol)
		}
	}
}

// P2: applying the same transition twice returns the original state.
func TestP2DoubleApplyIdentity(t *testing.T) {
	g, m := buildRingIsing(t, 6)
	_ = g
	f := rng.NewForker(7)
	stream := f.ForReplica(0)
	s := m.RandomState(stream)
	before := append([]uint8(nil), s.Assign...)

	m.ApplyTransition(Transition{Var: 2}, s)
	m.ApplyTransition(Transition{Var: 2}, s)

	require.Equal(t, before, s.Assign)
}

// P3: RandomState is bit-identical across invocations with the same seed.
func TestP3RandomStateDeterministic(t *testing.T) {
	g, m := buildRingIsing(t, 8)
	_ = g

	f1 := rng.NewForker(555)
	f2 := rng.NewForker(555)
	s1 := m.RandomState(f1.ForReplica(0))
	s2 := m.RandomState(f2.ForReplica(0))

	require.Equal(t, s1.Assign, s2.Assign)
}

// S4: MaxSat 3-clause example 1(¬x) + 4(x∨y) + 2(¬y).
func TestS4MaxSat(t *testing.T) {
	clauses := []Clause{
		{Weight: 1, Lits: []Lit{{Var: 0, Neg: true}}},
		{Weight: 4, Lits: []Lit{{Var: 0}, {Var: 1}}},
		{Weight: 2, Lits: []Lit{{Var: 1, Neg: true}}},
	}
	m := NewMaxSatModel(2, clauses)

	cases := []struct {
		x, y uint8
		want float64
	}{
		{0, 0, 4},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
	}
	for _, c := range cases {
		s := m.stateFromAssign([]uint8{c.x, c.y})
		got := m.CalculateCost(s)
		if got != c.want {
			t.Errorf("(%d,%d): cost=%v want %v", c.x, c.y, got, c.want)
		}
	}

	best := m.stateFromAssign([]uint8{1, 0})
	require.Equal(t, 1.0, m.CalculateCost(best))
}

// S5-style: SLC ising_grouped with two faces over a 10-spin ring.
func TestSLCGroupedFaceCost(t *testing.T) {
	g := graph.New(false)
	names := ringNames(10)
	for i := range names {
		j := (i + 1) % 10
		_ = g.AddTerm(1, []string{names[i], names[j]})
	}
	_, err := g.AddFace(0.5, 0, []graph.LinearTerm{
		{Name: names[0], Weight: 1},
		{Name: names[1], Weight: 1},
		{Name: names[2], Weight: 1},
	})
	require.NoError(t, err)
	_, err = g.AddFace(0.25, -1, []graph.LinearTerm{
		{Name: names[5], Weight: 1},
		{Name: names[6], Weight: 1},
	})
	require.NoError(t, err)
	g.Finalize()

	base := NewIsingModel(g)
	gm := NewGroupedModel(base, g)

	f := rng.NewForker(188)
	stream := f.ForReplica(0)
	s := gm.RandomState(stream)

	before := gm.CalculateCost(s)
	tr := Transition{Var: 1}
	delta := gm.CalculateCostDifference(s, tr)
	gm.ApplyTransition(tr, s)
	after := gm.CalculateCost(s)

	diff := math.Abs(after - before - delta)
	tol := 1e-9 * (1 + math.Abs(before))
	if diff > tol {
		t.Fatalf("grouped Δcost mismatch: |after-before-delta|=%v > %v", diff, tol)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	g, m := buildRingIsing(t, 4)
	_ = g
	f := rng.NewForker(3)
	s := m.RandomState(f.ForReplica(0))
	rendered := m.Render(s)
	if len(rendered) != 4 {
		t.Fatalf("rendered %d vars, want 4", len(rendered))
	}
	for _, v := range rendered {
		if v != 1 && v != -1 {
			t.Errorf("rendered value %v not in {-1,1}", v)
		}
	}
}
