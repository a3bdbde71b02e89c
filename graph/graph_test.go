package graph

import "testing"

func TestAddTermConstant(t *testing.T) {
	g := New(false)
	if err := g.AddTerm(3.5, nil); err != nil {
		t.Fatalf("AddTerm constant: %v", err)
	}
	g.Finalize()
	if g.Stats.ConstCost != 3.5 {
		t.Errorf("ConstCost = %v, want 3.5", g.Stats.ConstCost)
	}
	if g.Stats.NumEdges != 0 {
		t.Errorf("NumEdges = %d, want 0", g.Stats.NumEdges)
	}
}

func TestAddTermRing(t *testing.T) {
	g := New(false)
	names := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	for i := range names {
		j := (i + 1) % len(names)
		if err := g.AddTerm(1, []string{names[i], names[j]}); err != nil {
			t.Fatalf("AddTerm: %v", err)
		}
	}
	g.Finalize()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if g.Stats.NumEdges != 10 {
		t.Errorf("NumEdges = %d, want 10", g.Stats.NumEdges)
	}
	if g.Stats.MinLocality != 2 || g.Stats.MaxLocality != 2 {
		t.Errorf("locality = [%d,%d], want [2,2]", g.Stats.MinLocality, g.Stats.MaxLocality)
	}
	for _, n := range g.Nodes {
		if len(n.Edges) != 2 {
			t.Errorf("node %s has %d edges, want 2", n.Name, len(n.Edges))
		}
	}
}

func TestAddTermDuplicateRejected(t *testing.T) {
	g := New(false)
	if err := g.AddTerm(1, []string{"a", "a"}); err == nil {
		t.Fatal("expected error for duplicate variable without merge")
	}
}

func TestAddTermDuplicateMerged(t *testing.T) {
	g := New(true)
	if err := g.AddTerm(1, []string{"a", "a", "b"}); err != nil {
		t.Fatalf("AddTerm with merge: %v", err)
	}
	if g.Stats.NumEdges != 1 || g.Edges[0].Locality() != 2 {
		t.Errorf("expected one locality-2 edge after merge, got %+v", g.Edges)
	}
}

func TestRescaleFactor(t *testing.T) {
	g := New(false)
	_ = g.AddTerm(4, []string{"a", "b"})
	_ = g.AddTerm(-2, []string{"b", "c"})
	g.Finalize()
	if g.Stats.RescaleFactor != 0.25 {
		t.Errorf("RescaleFactor = %v, want 0.25", g.Stats.RescaleFactor)
	}
	g.Rescale()
	if g.Edges[0].Coeff != 1 {
		t.Errorf("rescaled coeff = %v, want 1", g.Edges[0].Coeff)
	}
}

func TestRescaleFactorNoOp(t *testing.T) {
	g := New(false)
	_ = g.AddTerm(0.5, []string{"a", "b"})
	g.Finalize()
	if g.Stats.RescaleFactor != 1 {
		t.Errorf("RescaleFactor = %v, want 1 (max coupling <= 1)", g.Stats.RescaleFactor)
	}
}

func TestCompactRoundTrip(t *testing.T) {
	g := New(false)
	_ = g.AddTerm(2, []string{"a", "b"})
	_ = g.AddTerm(-1, []string{"b", "c", "a"})
	g.Finalize()

	c := FromGraph(g)
	cur := NewCursor(c)

	var gotCoeffs []float64
	for {
		_, coeff, ok := cur.NextTerm()
		if !ok {
			break
		}
		gotCoeffs = append(gotCoeffs, coeff)
	}
	if len(gotCoeffs) != 2 || gotCoeffs[0] != 2 || gotCoeffs[1] != -1 {
		t.Errorf("gotCoeffs = %v, want [2 -1]", gotCoeffs)
	}
}
