// Package idgen produces the deterministic node identifiers used by the IR
// builder (SPEC_FULL.md §4.1 / spec.md §4.1).
//
// Identifiers are a balanced-ternary encoding (digits {T, 0, 1}, T = -1) of a
// monotonic counter. The encoding is chosen over a plain decimal counter so
// that identifiers stay short and lexicographically stable across the
// counter's sign boundary, which matters once a unit is re-compiled with a
// different statement count but the same prefix of nodes.
package idgen

import "fmt"

// maxNodes bounds the counter at 3^40, per the contract that overflow is
// "effectively never" reached by a real compilation unit.
const maxNodes = 12157665459056928801 // 3^40

// Generator hands out a monotonic sequence of balanced-ternary IDs. It is not
// safe for concurrent use; callers compiling multiple units in parallel must
// construct one Generator per unit (§5).
type Generator struct {
	counter uint64
}

// New returns a Generator reset to zero, ready for a fresh compilation unit.
func New() *Generator {
	return &Generator{}
}

// Reset zeroes the counter, as required when a Generator is reused for a new
// compilation unit instead of being reconstructed.
func (g *Generator) Reset() {
	g.counter = 0
}

// Next returns the next identifier in sequence and advances the counter.
func (g *Generator) Next() (string, error) {
	if g.counter >= maxNodes {
		return "", fmt.Errorf("idgen: counter overflow past 3^%d nodes", 40)
	}
	id := encode(g.counter)
	g.counter++
	return id, nil
}

// Count returns the number of identifiers issued so far.
func (g *Generator) Count() uint64 {
	return g.counter
}

const digits = "T01"

// encode converts n into balanced-ternary digits {-1, 0, 1} rendered as the
// characters 'T', '0', '1', most significant digit first. n == 0 encodes as
// "0".
func encode(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf []byte
	for n != 0 {
		rem := n % 3
		switch rem {
		case 0:
			buf = append(buf, '0')
			n /= 3
		case 1:
			buf = append(buf, '1')
			n /= 3
		case 2:
			// Balanced digit -1 ("T"); borrow one from the next power of three.
			buf = append(buf, 'T')
			n = n/3 + 1
		}
	}

	// buf was built least-significant-digit first; reverse it in place.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
