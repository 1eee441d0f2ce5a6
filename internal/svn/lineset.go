package svn

// LineSet is a set of 1-based line numbers. A nil LineSet means the signal
// is unknown (tool unavailable), which is distinct from an empty set
// (tool ran, nothing changed).
type LineSet map[int]struct{}

// Has reports membership. A nil set contains nothing.
func (s LineSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Add inserts a line number.
func (s LineSet) Add(n int) {
	s[n] = struct{}{}
}

// FullRange returns the set {1..total}, used when the old side of a diff
// does not exist and every line of the new side counts as changed.
func FullRange(total int) LineSet {
	s := make(LineSet, total)
	for i := 1; i <= total; i++ {
		s.Add(i)
	}
	return s
}
