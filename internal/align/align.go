// Package align computes line correspondences between two versions of a
// file. It uses github.com/pmezard/go-difflib/difflib opcode alignment
// (an LCS-style matcher) rather than a per-line equality scan, so reordered
// duplicate lines are never falsely matched.
package align

import (
	difflib "github.com/pmezard/go-difflib/difflib"
)

// Pair is a single aligned-equal line pair. A and B are 0-based indices
// into the respective input sequences.
type Pair struct {
	A int
	B int
}

// EqualMap aligns sequence a against sequence b and returns a partial
// injective mapping from indices of a to indices of b, covering only the
// lines inside "equal" opcode runs. Empty input on either side yields an
// empty map. The matcher is deterministic: identical inputs always produce
// the identical mapping.
func EqualMap(a, b []string) map[int]int {
	mapping := make(map[int]int)
	for _, p := range EqualPairs(a, b) {
		mapping[p.A] = p.B
	}
	return mapping
}

// EqualPairs returns the aligned-equal pairs of a vs b in ascending order.
// Callers that need to consult per-line flags on the a side (conflict
// remapping) use this form directly.
func EqualPairs(a, b []string) []Pair {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	// Autojunk is disabled: difflib's popularity heuristic drops frequent
	// lines (blank lines, braces) from matching, which would punch holes
	// into the correspondence map.
	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	var pairs []Pair
	for _, op := range m.GetOpCodes() {
		if op.Tag != 'e' {
			continue
		}
		for off := 0; off < op.I2-op.I1; off++ {
			pairs = append(pairs, Pair{A: op.I1 + off, B: op.J1 + off})
		}
	}
	return pairs
}
