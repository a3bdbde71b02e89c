// Package estimator implements the temperature estimator (spec §4.7/C7):
// a brief probe over random states and random flips, from which the
// initial and final temperatures of an annealing schedule are derived from
// quantiles of the observed |Δcost| distribution.
package estimator

import (
	"math"
	"sort"

	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"gonum.org/v1/gonum/stat"
)

// Probe draws nSamples random (state, transition) pairs from m and records
// |Δcost| for each, used both directly (EstimateTemperatures) and by the
// parameter-free wrapper to size the production run.
func Probe(m model.CostModel, stream *rng.Stream, nSamples int) []float64 {
	samples := make([]float64, 0, nSamples)
	for i := 0; i < nSamples; i++ {
		s := m.RandomState(stream)
		t := m.RandomTransition(s, stream)
		delta := m.CalculateCostDifference(s, t)
		samples = append(samples, math.Abs(delta))
	}
	return samples
}

// Temperatures holds the estimator's output: the initial (high) and final
// (low) temperatures for a cooling schedule.
type Temperatures struct {
	Initial float64
	Final   float64
}

// EstimateTemperatures derives T_initial from the highQuantile of the
// sampled |Δ| distribution — high enough that a random flip is accepted
// with probability roughly 0.5 — and T_final from the lowQuantile, low
// enough that only improving flips survive. Quantiles are computed with
// gonum/stat over the sorted sample.
func EstimateTemperatures(samples []float64, highQuantile, lowQuantile float64) Temperatures {
	if len(samples) == 0 {
		return Temperatures{Initial: 1, Final: 0.01}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	hi := stat.Quantile(highQuantile, stat.Empirical, sorted, nil)
	lo := stat.Quantile(lowQuantile, stat.Empirical, sorted, nil)

	// exp(-hi/T) ~= 0.5 at the acceptance-0.5 target: T = hi / ln(2).
	initial := hi / math.Ln2
	final := lo
	if final <= 0 {
		final = initial * 1e-3
	}
	if initial <= 0 {
		initial = 1
	}
	return Temperatures{Initial: initial, Final: final}
}

// SweepCountForBudget derives a production sweep count from a wall-clock
// time budget, assuming perSweepSeconds time per sweep as measured during
// the probe. It returns at least 1.
func SweepCountForBudget(timeBudgetSeconds, perSweepSeconds float64) int {
	if perSweepSeconds <= 0 {
		return 1
	}
	n := int(timeBudgetSeconds / perSweepSeconds)
	if n < 1 {
		n = 1
	}
	return n
}
