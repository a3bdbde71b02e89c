package model

import (
	"math"

	"github.com/qiotoolkit/qiotoolkit/rng"
)

// Acceptor implements the Metropolis criterion (spec §4.1/C8): accept a
// proposal with cost change delta if delta <= 0, otherwise accept with
// probability exp(-delta/temperature). temperature <= 0 is treated as
// "zero temperature" — only improving-or-equal moves (delta <= 0) are
// accepted.
type Acceptor struct {
	// expTable memoizes exp(x) over a bucketed negative range so the hot
	// sweep loop avoids a transcendental call per proposal. It trades a
	// small, bounded accuracy loss for speed; Accept falls back to
	// math.Exp outside the table's domain.
	expTable []float64
}

const (
	expTableBuckets  = 4096
	expTableMinX     = -40.0
)

// NewAcceptor builds an Acceptor with its fast-exp lookup table populated.
func NewAcceptor() *Acceptor {
	a := &Acceptor{expTable: make([]float64, expTableBuckets+1)}
	for i := range a.expTable {
		x := expTableMinX * (1 - float64(i)/float64(expTableBuckets))
		a.expTable[i] = math.Exp(x)
	}
	return a
}

// fastExp approximates exp(x) for x in [expTableMinX, 0] via the
// precomputed table, linearly interpolating between buckets.
func (a *Acceptor) fastExp(x float64) float64 {
	if x >= 0 {
		return math.Exp(x)
	}
	if x < expTableMinX {
		return 0
	}
	frac := (x - expTableMinX) / (-expTableMinX) * float64(expTableBuckets)
	lo := int(frac)
	if lo >= expTableBuckets {
		return a.expTable[expTableBuckets]
	}
	w := frac - float64(lo)
	return a.expTable[lo]*(1-w) + a.expTable[lo+1]*w
}

// Accept applies the Metropolis criterion for a proposed cost change delta
// at the given temperature, drawing a uniform variate from stream only
// when delta > 0 (P4 cooling schedules rely on this short-circuit: a
// non-improving move at temperature 0 is always rejected without
// consuming randomness).
func (a *Acceptor) Accept(delta, temperature float64, stream *rng.Stream) bool {
	if delta <= 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return stream.Uniform() < a.fastExp(-delta/temperature)
}

// AcceptBeta is the inverse-temperature form: accept if delta <= 0, else
// with probability exp(-delta*beta).
func (a *Acceptor) AcceptBeta(delta, beta float64, stream *rng.Stream) bool {
	if delta <= 0 {
		return true
	}
	if beta <= 0 {
		return true
	}
	return stream.Uniform() < a.fastExp(-delta*beta)
}
