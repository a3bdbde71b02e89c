// Package rng provides the seedable, forkable random sources shared by every
// solver engine: a master stream derived from the run seed, and one forked
// child stream per replica so that replica k's random decisions never
// depend on how many other replicas exist or in what order they execute.
package rng

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// Seed identifies a reproducible run. Two runs with the same Seed and
// identical configuration must produce bit-identical results (P3).
type Seed int64

// Source is a uniform/exponential/normal/int random source. *rand.Rand
// satisfies it directly; Stream wraps one per subsystem/replica.
type Source interface {
	Float64() float64
	Int63n(n int64) int64
	ExpFloat64() float64
	NormFloat64() float64
}

// Stream wraps a *rand.Rand with the convenience calls solvers use. It is
// not safe for concurrent use — each replica owns exactly one Stream.
type Stream struct {
	r *rand.Rand
}

func newStream(seed int64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0,1).
func (s *Stream) Float64() float64 { return s.r.Float64() }

// Uniform is an alias of Float64 matching the acceptance-criterion U(0,1)
// naming used in the Metropolis spec.
func (s *Stream) Uniform() float64 { return s.r.Float64() }

// Intn returns a uniform integer in [0,n).
func (s *Stream) Intn(n int) int { return s.r.Intn(n) }

// ExpFloat64 returns an exponentially distributed value with rate 1.
func (s *Stream) ExpFloat64() float64 { return s.r.ExpFloat64() }

// NormFloat64 returns a standard-normal distributed value.
func (s *Stream) NormFloat64() float64 { return s.r.NormFloat64() }

// Bool returns true with probability 0.5.
func (s *Stream) Bool() bool { return s.r.Float64() < 0.5 }

// Forker derives deterministic, isolated child streams from a single master
// seed, so the same subsystem/replica name always yields the same stream
// regardless of creation order — the forking scheme is XOR-with-hash, the
// same derivation the teacher's PartitionedRNG uses for non-workload
// subsystems.
type Forker struct {
	seed    Seed
	streams map[string]*Stream
}

// NewForker creates a Forker rooted at seed.
func NewForker(seed Seed) *Forker {
	return &Forker{seed: seed, streams: make(map[string]*Stream)}
}

// Seed returns the Forker's root seed.
func (f *Forker) Seed() Seed { return f.seed }

// ForName returns the deterministic child stream for name, creating and
// caching it on first use. Never returns nil.
func (f *Forker) ForName(name string) *Stream {
	if s, ok := f.streams[name]; ok {
		return s
	}
	derived := int64(f.seed) ^ fnv1a64(name)
	s := newStream(derived)
	f.streams[name] = s
	return s
}

// ForReplica is a convenience wrapper around ForName for replica index i.
func (f *Forker) ForReplica(i int) *Stream {
	return f.ForName(replicaName(i))
}

func replicaName(i int) string {
	return "replica_" + strconv.Itoa(i)
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
