// Package schedule implements the temperature/parameter schedule family
// (spec §3/C6): a deterministic mapping from progress in [0,1] (or a step
// count normalized against a step limit) to a scalar parameter.
package schedule

import "math"

// Schedule maps a progress value in [0,1] to a scalar. Implementations:
// Constant, Linear, Geometric, Segments.
type Schedule interface {
	At(progress float64) float64
}

// Constant returns v regardless of progress.
type Constant struct{ V float64 }

func (c Constant) At(float64) float64 { return c.V }

// Linear interpolates linearly between V0 (progress=0) and V1 (progress=1).
type Linear struct{ V0, V1 float64 }

func (l Linear) At(progress float64) float64 {
	return l.V0 + (l.V1-l.V0)*clamp01(progress)
}

// Geometric interpolates exponentially between V0 and V1, both of which
// must be positive (spec §3). At progress 0 it returns V0, at 1 it
// returns V1, and at intermediate points it follows V0*(V1/V0)^progress.
type Geometric struct{ V0, V1 float64 }

func (g Geometric) At(progress float64) float64 {
	if g.V0 <= 0 || g.V1 <= 0 {
		return g.V0
	}
	p := clamp01(progress)
	return g.V0 * math.Pow(g.V1/g.V0, p)
}

// Segment is one piece of a Segments schedule: active while progress is in
// [Start, Stop), evaluating Inner re-normalized to [0,1] over that range.
type Segment struct {
	Start, Stop float64
	Inner       Schedule
}

// Segments selects among a list of Segment by progress, evaluating the
// selected segment's Inner schedule re-normalized to its own [0,1] range.
// The last segment is treated as covering [Start, 1] inclusive so progress
// == 1 always resolves.
type Segments struct {
	Parts []Segment
}

func (s Segments) At(progress float64) float64 {
	p := clamp01(progress)
	for i, seg := range s.Parts {
		isLast := i == len(s.Parts)-1
		if p >= seg.Start && (p < seg.Stop || isLast) {
			span := seg.Stop - seg.Start
			if span <= 0 {
				return seg.Inner.At(0)
			}
			local := (p - seg.Start) / span
			return seg.Inner.At(clamp01(local))
		}
	}
	if len(s.Parts) == 0 {
		return 0
	}
	return s.Parts[len(s.Parts)-1].Inner.At(1)
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// BetaFromRange builds a geometric inverse-temperature schedule from
// beta_start/beta_stop, the shortcut §6 params.beta_start/params.beta_stop
// allow in place of a full schedule spec.
func BetaFromRange(betaStart, betaStop float64) Schedule {
	return Geometric{V0: betaStart, V1: betaStop}
}

// IsMonotonicNonIncreasing reports whether Schedule s takes non-increasing
// values at n evenly spaced midpoints of [0,1] (P4: SA's default cooling
// schedule must satisfy this).
func IsMonotonicNonIncreasing(s Schedule, n int) bool {
	prev := math.Inf(1)
	for i := 0; i < n; i++ {
		p := (float64(i) + 0.5) / float64(n)
		v := s.At(p)
		if v > prev+1e-12 {
			return false
		}
		prev = v
	}
	return true
}

// IsMonotonicIncreasing reports whether a slice of values strictly
// increases, for PT's ladder of replica temperatures.
func IsMonotonicIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}
