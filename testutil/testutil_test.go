package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedUnique(t *testing.T) {
	rng := NewRNG(42)

	values := rng.SortedUnique(1000, 1<<20)
	require.Len(t, values, 1000)

	for i := 1; i < len(values); i++ {
		assert.Less(t, values[i-1], values[i])
	}
	for _, v := range values {
		assert.Less(t, v, uint64(1<<20))
	}
}

func TestSortedUnique_Deterministic(t *testing.T) {
	a := NewRNG(7).SortedUnique(100, 1<<16)
	b := NewRNG(7).SortedUnique(100, 1<<16)
	assert.Equal(t, a, b)

	rng := NewRNG(7)
	first := rng.SortedUnique(100, 1<<16)
	rng.Reset()
	assert.Equal(t, first, rng.SortedUnique(100, 1<<16))
}

func TestSortedClustered(t *testing.T) {
	rng := NewRNG(42)

	values := rng.SortedClustered(500, 1<<24, 32)
	require.Len(t, values, 500)

	for i := 1; i < len(values); i++ {
		assert.Less(t, values[i-1], values[i])
	}

	// Clustering produces adjacent pairs.
	adjacent := 0
	for i := 1; i < len(values); i++ {
		if values[i] == values[i-1]+1 {
			adjacent++
		}
	}
	assert.Greater(t, adjacent, len(values)/2)
}
