package schedule

import "testing"

func TestLinearEndpoints(t *testing.T) {
	l := Linear{V0: 2.0, V1: 1.0}
	if l.At(0) != 2.0 {
		t.Errorf("At(0) = %v, want 2.0", l.At(0))
	}
	if l.At(1) != 1.0 {
		t.Errorf("At(1) = %v, want 1.0", l.At(1))
	}
	if l.At(0.5) != 1.5 {
		t.Errorf("At(0.5) = %v, want 1.5", l.At(0.5))
	}
}

func TestGeometricEndpoints(t *testing.T) {
	g := Geometric{V0: 4, V1: 1}
	if g.At(0) != 4 {
		t.Errorf("At(0) = %v, want 4", g.At(0))
	}
	if g.At(1) != 1 {
		t.Errorf("At(1) = %v, want 1", g.At(1))
	}
	mid := g.At(0.5)
	if mid != 2 {
		t.Errorf("At(0.5) = %v, want 2 (sqrt(4*1))", mid)
	}
}

func TestSegmentsSelectsByProgress(t *testing.T) {
	s := Segments{Parts: []Segment{
		{Start: 0, Stop: 0.5, Inner: Constant{V: 10}},
		{Start: 0.5, Stop: 1, Inner: Constant{V: 1}},
	}}
	if s.At(0.1) != 10 {
		t.Errorf("At(0.1) = %v, want 10", s.At(0.1))
	}
	if s.At(0.9) != 1 {
		t.Errorf("At(0.9) = %v, want 1", s.At(0.9))
	}
	if s.At(1) != 1 {
		t.Errorf("At(1) = %v, want 1", s.At(1))
	}
}

// P4: SA's default cooling schedule (Linear descending) is monotonically
// non-increasing at the N midpoints of [0,1].
func TestP4LinearCoolingMonotonic(t *testing.T) {
	l := Linear{V0: 2.0, V1: 0.1}
	if !IsMonotonicNonIncreasing(l, 100) {
		t.Error("descending linear schedule should be monotonically non-increasing")
	}
}

func TestP4GeometricCoolingMonotonic(t *testing.T) {
	g := Geometric{V0: 5, V1: 0.01}
	if !IsMonotonicNonIncreasing(g, 100) {
		t.Error("descending geometric schedule should be monotonically non-increasing")
	}
}

func TestP4PTLadderStrictlyIncreasing(t *testing.T) {
	temps := []float64{0.1, 0.3, 0.9, 2.0, 5.0}
	if !IsMonotonicIncreasing(temps) {
		t.Error("PT temperature ladder should be strictly increasing")
	}
	bad := []float64{0.1, 0.3, 0.3, 2.0}
	if IsMonotonicIncreasing(bad) {
		t.Error("ladder with a repeated value should not count as strictly increasing")
	}
}

func TestBetaFromRange(t *testing.T) {
	s := BetaFromRange(0.1, 2.0)
	if s.At(0) != 0.1 || s.At(1) != 2.0 {
		t.Errorf("beta schedule endpoints wrong: %v, %v", s.At(0), s.At(1))
	}
}
