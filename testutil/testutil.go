// Package testutil provides testing utilities for succinct.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for sorted integer sequences with
// controllable density.
package testutil

import (
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random uint64 in [0,n).
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64() % n
}

// SortedUnique generates n sorted, distinct uint64 values drawn uniformly
// from [0, universe). It panics if n > universe.
func (r *RNG) SortedUnique(n int, universe uint64) []uint64 {
	if uint64(n) > universe {
		panic("testutil: n exceeds universe")
	}

	seen := make(map[uint64]struct{}, n)
	values := make([]uint64, 0, n)
	for len(values) < n {
		v := r.Uint64n(universe)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// SortedClustered generates a sorted, distinct sequence of roughly n values
// grouped into dense runs. Each run starts at a random base and contains
// consecutive values, which concentrates many values into few high-bit
// buckets.
func (r *RNG) SortedClustered(n int, universe uint64, runLen int) []uint64 {
	if runLen < 1 {
		runLen = 1
	}

	seen := make(map[uint64]struct{}, n)
	values := make([]uint64, 0, n)
	for len(values) < n {
		base := r.Uint64n(universe)
		for i := 0; i < runLen && len(values) < n; i++ {
			v := base + uint64(i)
			if v >= universe {
				break
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}
