package bitpack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	require.Equal(t, uint64(0), Mask(0))
	require.Equal(t, uint64(1), Mask(1))
	require.Equal(t, uint64(0xFF), Mask(8))
	require.Equal(t, ^uint64(0), Mask(64))
}

func TestGetSet_WithinWord(t *testing.T) {
	words := make([]uint64, 2)

	Set(words, 3, 8, 0xAB)
	require.Equal(t, uint64(0xAB), Get(words, 3, 8))

	// Neighboring bits stay untouched.
	require.Equal(t, uint64(0), Get(words, 0, 3))
	require.Equal(t, uint64(0), Get(words, 11, 8))
}

func TestGetSet_Straddling(t *testing.T) {
	words := make([]uint64, 2)

	// 17-bit field starting at bit 60 spans words 0 and 1.
	Set(words, 60, 17, 0x1ABCD)
	require.Equal(t, uint64(0x1ABCD), Get(words, 60, 17))

	// Overwrite clears the old bits first.
	Set(words, 60, 17, 0x00001)
	require.Equal(t, uint64(0x00001), Get(words, 60, 17))
	require.Equal(t, uint64(0), Get(words, 0, 60))
}

func TestGetSet_FullWidth(t *testing.T) {
	words := make([]uint64, 3)

	Set(words, 0, 64, 0xDEADBEEFCAFEF00D)
	require.Equal(t, uint64(0xDEADBEEFCAFEF00D), Get(words, 0, 64))

	Set(words, 64+13, 64, 0x0123456789ABCDEF)
	require.Equal(t, uint64(0x0123456789ABCDEF), Get(words, 64+13, 64))
	require.Equal(t, uint64(0xDEADBEEFCAFEF00D), Get(words, 0, 64))
}

func TestGetSet_ZeroWidth(t *testing.T) {
	words := []uint64{0xFFFFFFFFFFFFFFFF}

	require.Equal(t, uint64(0), Get(words, 10, 0))
	Set(words, 10, 0, 0x123)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), words[0])
}

func TestGetSet_PackedSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, width := range []uint{1, 3, 7, 13, 31, 33, 63, 64} {
		n := 257
		words := make([]uint64, (uint64(n)*uint64(width)+63)/64+1)
		values := make([]uint64, n)

		for i := range values {
			values[i] = rng.Uint64() & Mask(width)
			Set(words, uint64(i)*uint64(width), width, values[i])
		}
		for i, want := range values {
			require.Equal(t, want, Get(words, uint64(i)*uint64(width), width),
				"width %d index %d", width, i)
		}
	}
}
