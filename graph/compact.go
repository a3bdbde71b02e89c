package graph

// NextTerm terminates one term's run of variable ids in the packed
// adjacency stream produced by Compact. It is chosen outside the valid
// variable-id range so a sequential cursor can distinguish "one more
// variable in this term" from "term boundary" from "stream end" without a
// separate length table.
const NextTerm = -2

// Compact is the memory-saving adjacency encoding (spec §3, §4.1
// "compact form"): a packed stream of variable ids terminated by NextTerm
// between terms, paired with a parallel slice of coefficients. It halves
// memory against Graph at the cost of sequential-only traversal via
// Cursor.
type Compact struct {
	Stream []int32
	Coeffs []float64
	NumVars int
}

// FromGraph packs g's edge list into a Compact stream. Faces are not
// representable in Compact (spec scopes the compact variant to plain
// Ising/PUBO graphs); callers must check len(g.Faces) == 0 first.
func FromGraph(g *Graph) *Compact {
	c := &Compact{NumVars: g.N()}
	for _, e := range g.Edges {
		for _, v := range e.Vars {
			c.Stream = append(c.Stream, int32(v))
		}
		c.Stream = append(c.Stream, NextTerm)
		c.Coeffs = append(c.Coeffs, e.Coeff)
	}
	return c
}

// Cursor walks a Compact stream term-by-term. It must be reset to the
// start whenever the caller's traversal order restarts (spec: "requires
// flipping variables in ascending order, enforced by resetting the cursor
// on spin_id == 0").
type Cursor struct {
	c       *Compact
	pos     int
	termIdx int
}

// NewCursor returns a Cursor positioned at the start of the stream.
func NewCursor(c *Compact) *Cursor {
	return &Cursor{c: c}
}

// Reset rewinds the cursor to the start of the stream.
func (cur *Cursor) Reset() {
	cur.pos = 0
	cur.termIdx = 0
}

// Done reports whether the cursor has consumed the entire stream.
func (cur *Cursor) Done() bool {
	return cur.pos >= len(cur.c.Stream)
}

// NextTerm returns the variable ids and coefficient of the next term and
// advances past it, or ok=false if the stream is exhausted.
func (cur *Cursor) NextTerm() (vars []int32, coeff float64, ok bool) {
	if cur.Done() {
		return nil, 0, false
	}
	start := cur.pos
	for cur.c.Stream[cur.pos] != NextTerm {
		cur.pos++
	}
	vars = cur.c.Stream[start:cur.pos]
	coeff = cur.c.Coeffs[cur.termIdx]
	cur.termIdx++
	cur.pos++ // skip the NextTerm sentinel
	return vars, coeff, true
}

// MemoryBytes estimates the packed stream's footprint: 4 bytes per stream
// entry plus 8 bytes per coefficient, against Graph's ~(8 bytes/var-ref +
// edge overhead) representation.
func (c *Compact) MemoryBytes() int64 {
	return int64(len(c.Stream))*4 + int64(len(c.Coeffs))*8
}
