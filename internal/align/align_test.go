package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualMapIdenticalSequences(t *testing.T) {
	a := []string{"one", "two", "three"}
	m := EqualMap(a, a)
	require.Len(t, m, 3)
	for i := range a {
		assert.Equal(t, i, m[i])
	}
}

func TestEqualMapEmptyInput(t *testing.T) {
	assert.Empty(t, EqualMap(nil, []string{"x"}))
	assert.Empty(t, EqualMap([]string{"x"}, nil))
	assert.Empty(t, EqualMap(nil, nil))
}

func TestEqualMapInsertionShiftsMapping(t *testing.T) {
	a := []string{"alpha", "inserted", "beta", "gamma"}
	b := []string{"alpha", "beta", "gamma"}
	m := EqualMap(a, b)
	require.Len(t, m, 3)
	assert.Equal(t, 0, m[0])
	assert.Equal(t, 1, m[2])
	assert.Equal(t, 2, m[3])
	_, ok := m[1]
	assert.False(t, ok, "inserted line must stay unmapped")
}

func TestEqualMapDoesNotMatchReorderedDuplicates(t *testing.T) {
	// A naive equality scan would map both copies of "dup"; opcode
	// alignment keeps only the run that participates in the LCS.
	a := []string{"dup", "x", "dup"}
	b := []string{"x", "dup"}
	m := EqualMap(a, b)
	for ai, bi := range m {
		assert.Equal(t, a[ai], b[bi])
	}
	// "x" must survive as a match; the first "dup" must not map to b[1].
	assert.Equal(t, 0, m[1])
	_, firstDupMapped := m[0]
	assert.False(t, firstDupMapped)
}

func TestEqualPairsDeterministic(t *testing.T) {
	a := []string{"a", "b", "", "c", "b", "d"}
	b := []string{"b", "", "c", "d", "b"}
	first := EqualPairs(a, b)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EqualPairs(a, b))
	}
}

func TestEqualMapBlankLinesStillMatch(t *testing.T) {
	// Guard against autojunk: frequent lines must remain mappable.
	a := make([]string, 0, 200)
	b := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		a = append(a, "", "line")
		b = append(b, "", "line")
	}
	m := EqualMap(a, b)
	assert.Len(t, m, 200)
}
