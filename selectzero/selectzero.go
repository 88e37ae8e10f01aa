// Package selectzero answers select-zero queries over a bit vector: the
// position of the i-th zero bit, in near-constant time.
//
// The index keeps a sampled inventory with the position of every
// inventorySpacing-th zero. A query jumps to the nearest sample and scans
// forward word by word with popcounts, so the scan touches at most
// inventorySpacing zeros. The index is derived data: it is rebuilt (or
// re-bound after deserialization) from its bit vector and never mutated
// independently.
package selectzero

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/hupe1980/succinct/bitvector"
)

// inventorySpacing is the number of zeros between inventory samples.
const inventorySpacing = 64

// Index locates zero bits in a bit vector by rank.
type Index struct {
	bv        *bitvector.BitVector
	numZeros  uint64
	inventory []uint64
}

// NewIndex builds a select-zero index over bv. Zeros are counted within the
// declared bit length only; bv must outlive the index.
func NewIndex(bv *bitvector.BitVector) *Index {
	idx := &Index{bv: bv}

	numBits := bv.Len()
	words := bv.Words()

	var seen uint64
	for w, word := range words {
		// Bits beyond the declared length never count as zeros.
		z := ^word
		base := uint64(w) * 64
		if base >= numBits {
			break
		}
		if numBits-base < 64 {
			z &= (1 << (numBits - base)) - 1
		}

		for z != 0 {
			if seen%inventorySpacing == 0 {
				idx.inventory = append(idx.inventory, base+uint64(bits.TrailingZeros64(z)))
			}
			seen++
			z &= z - 1
		}
	}
	idx.numZeros = seen

	return idx
}

// NumZeros returns the number of zero bits covered by the index.
func (idx *Index) NumZeros() uint64 {
	return idx.numZeros
}

// SelectZero returns the position of the i-th zero bit (0-indexed).
// If i >= NumZeros it returns the declared bit length.
func (idx *Index) SelectZero(i uint64) uint64 {
	if i >= idx.numZeros {
		return idx.bv.Len()
	}

	start := idx.inventory[i/inventorySpacing]
	skip := i % inventorySpacing
	if skip == 0 {
		return start
	}

	words := idx.bv.Words()
	w := start / 64

	// Zeros strictly after the sampled position within its word.
	z := ^words[w] &^ ((1 << (start%64 + 1)) - 1)
	for {
		n := uint64(bits.OnesCount64(z))
		if n >= skip {
			return w*64 + selectInWord(z, skip-1)
		}
		skip -= n
		w++
		z = ^words[w]
	}
}

// SelectZero2 returns the positions of the i-th and (i+1)-th zero bits in a
// single call. The pair bounds one bucket's run of one-bits in a unary
// encoded vector. If i+1 >= NumZeros the second position is the declared
// bit length.
func (idx *Index) SelectZero2(i uint64) (uint64, uint64) {
	pos := idx.SelectZero(i)
	if i+1 >= idx.numZeros {
		return pos, idx.bv.Len()
	}

	words := idx.bv.Words()
	w := pos / 64

	z := ^words[w] &^ ((1 << (pos%64 + 1)) - 1)
	for z == 0 {
		w++
		z = ^words[w]
	}
	return pos, w*64 + uint64(bits.TrailingZeros64(z))
}

// selectInWord returns the position of the r-th set bit in w (0-indexed).
// The caller guarantees w has more than r set bits.
func selectInWord(w uint64, r uint64) uint64 {
	for ; r > 0; r-- {
		w &= w - 1
	}
	return uint64(bits.TrailingZeros64(w))
}

// BitCount returns an estimate of the index footprint in bits, excluding
// the bit vector it points at.
func (idx *Index) BitCount() uint64 {
	return uint64(len(idx.inventory))*64 + 2*64
}

// WriteTo serializes the inventory and zero count. The bit vector itself is
// not written; after ReadFrom the index must be re-attached with Bind.
// It implements io.WriterTo.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	var written int64

	binary.LittleEndian.PutUint64(buf[:], idx.numZeros)
	n, err := w.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(idx.inventory)))
	n, err = w.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, pos := range idx.inventory {
		binary.LittleEndian.PutUint64(buf[:], pos)
		n, err = w.Write(buf[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadFrom deserializes an index written by WriteTo. The result answers no
// queries until Bind attaches the bit vector it was built over.
// It implements io.ReaderFrom.
func (idx *Index) ReadFrom(r io.Reader) (int64, error) {
	var buf [8]byte
	var read int64

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return read, fmt.Errorf("selectzero: read zero count: %w", err)
	}
	read += 8
	idx.numZeros = binary.LittleEndian.Uint64(buf[:])

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return read, fmt.Errorf("selectzero: read inventory length: %w", err)
	}
	read += 8
	count := binary.LittleEndian.Uint64(buf[:])

	idx.inventory = make([]uint64, count)
	for i := range idx.inventory {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return read, fmt.Errorf("selectzero: read inventory: %w", err)
		}
		read += 8
		idx.inventory[i] = binary.LittleEndian.Uint64(buf[:])
	}

	idx.bv = nil
	return read, nil
}

// Bind attaches the bit vector a deserialized index answers queries over.
func (idx *Index) Bind(bv *bitvector.BitVector) {
	idx.bv = bv
}
