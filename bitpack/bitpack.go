// Package bitpack reads and writes fixed-width unsigned integers at
// arbitrary bit offsets inside a []uint64 word array. Fields may straddle a
// word boundary; all straddling arithmetic lives here so higher layers share
// one implementation.
//
// This is a systems-level primitive: no bounds checking is performed against
// the slice length. Callers must size their arrays so that the last field,
// plus any straddle into the following word, stays in range.
package bitpack

// Mask returns a mask covering the low width bits. width must be in [0, 64].
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (1 << width) - 1
}

// Get returns the width-bit unsigned value stored at bit offset start.
// width must be in [0, 64]; a zero width reads nothing and returns 0.
func Get(words []uint64, start uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}

	wordIdx := start / 64
	bitIdx := uint(start % 64)

	v := words[wordIdx] >> bitIdx
	if bitIdx+width > 64 {
		v |= words[wordIdx+1] << (64 - bitIdx)
	}
	return v & Mask(width)
}

// Set writes the low width bits of value at bit offset start, clearing the
// target bits first. width must be in [0, 64]; a zero width is a no-op.
// Bits of value above width must be zero (callers mask before writing).
func Set(words []uint64, start uint64, width uint, value uint64) {
	if width == 0 {
		return
	}

	startWord := start / 64
	endWord := (start + uint64(width) - 1) / 64
	bitIdx := uint(start % 64)

	if startWord == endWord {
		words[startWord] &^= Mask(width) << bitIdx
		words[startWord] |= value << bitIdx
		return
	}

	// Field straddles into the next word: here bitIdx > 0.
	words[startWord] &= Mask(bitIdx)
	words[startWord] |= value << bitIdx
	words[endWord] &^= Mask(width - (64 - bitIdx))
	words[endWord] |= value >> (64 - bitIdx)
}
