package eliasfano

import "math/bits"

// Cursor is a lightweight forward-enumeration handle over a Sequence: a
// (rank, upper-bit position) pair plus a read-only reference to its parent.
// It owns no storage and must not outlive the structure it points into.
// The zero Cursor is invalid.
type Cursor struct {
	seq   *Sequence
	rank  uint64
	pos   uint64
	valid bool
}

// Valid reports whether the cursor points at a stored element.
func (c Cursor) Valid() bool {
	return c.valid
}

// Rank returns the rank of the element the cursor points at.
func (c Cursor) Rank() uint64 {
	return c.rank
}

// Value reconstructs the element the cursor points at.
func (c Cursor) Value() uint64 {
	return c.seq.value(c.rank, c.pos)
}

// Next advances the cursor to the element of the next rank by scanning the
// upper bit vector for the next set bit. It returns false, invalidating the
// cursor, once the last element has been passed.
func (c *Cursor) Next() bool {
	if !c.valid {
		return false
	}
	c.rank++
	if c.rank >= c.seq.count {
		c.valid = false
		return false
	}

	words := c.seq.upper.Words()
	w := c.pos / 64

	// Mask off the current bit and everything below it, then walk words
	// until the next set bit shows up.
	window := words[w] & (^uint64(0) << (c.pos % 64))
	window &= window - 1
	for window == 0 {
		w++
		window = words[w]
	}
	c.pos = w*64 + uint64(bits.TrailingZeros64(window))
	return true
}
