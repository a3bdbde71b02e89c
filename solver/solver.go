// Package solver holds the types shared by every solver engine (spec
// §4.2-§4.6/C9-C13): the common Result document and the top-K distinct
// solution pool used to populate solutions.solutions (spec §6).
package solver

import (
	"sort"
	"strconv"

	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Solution is one (cost, configuration) pair in the result document.
type Solution struct {
	Cost          float64
	Configuration map[string]float64
}

// Result is the engine-agnostic outcome of a solver run (spec §6
// "solutions" + "benchmark.solver").
type Result struct {
	BestCost      float64
	Configuration map[string]float64
	Solutions     []Solution
	Telemetry     telemetry.SolverTelemetry
}

// configKey renders a state's configuration into a stable string so the
// pool can deduplicate states that reach the same assignment.
func configKey(cfg map[string]float64) string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b []byte
	for _, k := range keys {
		b = append(b, k...)
		b = append(b, '=')
		b = appendFloat(b, cfg[k])
		b = append(b, ';')
	}
	return string(b)
}

func appendFloat(b []byte, f float64) []byte {
	// Configurations only ever hold {0,1} or {-1,+1}; the common cases are
	// exact-matched directly, with strconv as a total fallback.
	switch f {
	case 0:
		return append(b, '0')
	case 1:
		return append(b, '1')
	case -1:
		return append(b, '-', '1')
	default:
		return strconv.AppendFloat(b, f, 'g', -1, 64)
	}
}

// Pool tracks the K best distinct configurations seen during a run,
// spec §6's "number_of_solutions" (1 <= K <= 1000, validated by
// config.Document.Validate at load time).
type Pool struct {
	k       int
	seen    map[string]bool
	entries []Solution
}

// NewPool creates a Pool that retains up to k distinct solutions.
func NewPool(k int) *Pool {
	if k < 1 {
		k = 1
	}
	return &Pool{k: k, seen: make(map[string]bool)}
}

// Offer records (cost, m.Render(s)) if it is a new distinct configuration,
// keeping only the k best (lowest-cost) seen so far.
func (p *Pool) Offer(cost float64, m model.CostModel, s *model.State) {
	cfg := m.Render(s)
	key := configKey(cfg)
	if p.seen[key] {
		return
	}
	p.seen[key] = true
	p.entries = append(p.entries, Solution{Cost: cost, Configuration: cfg})
	sort.Slice(p.entries, func(i, j int) bool { return p.entries[i].Cost < p.entries[j].Cost })
	if len(p.entries) > p.k {
		dropped := p.entries[p.k:]
		p.entries = p.entries[:p.k]
		for _, d := range dropped {
			delete(p.seen, configKey(d.Configuration))
		}
	}
}

// Best returns the pool's best (lowest-cost) distinct solutions,
// best-first.
func (p *Pool) Best() []Solution {
	return p.entries
}
