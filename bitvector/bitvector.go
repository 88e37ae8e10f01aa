// Package bitvector provides a fixed-length, word-addressable bit vector
// backed by a []uint64 array, with the length-prefixed binary serialization
// shared by every on-disk structure in this module.
package bitvector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

// BitVector is a bit vector with a declared length in bits, stored in
// 64-bit words. Length and backing words are fixed at construction; bits
// are written once during a build phase and read-only afterwards.
type BitVector struct {
	words   []uint64
	numBits uint64
}

// New creates a zeroed bit vector with the given length in bits.
func New(numBits uint64) *BitVector {
	return &BitVector{
		words:   make([]uint64, (numBits+63)/64),
		numBits: numBits,
	}
}

// Set sets the bit at pos.
func (bv *BitVector) Set(pos uint64) {
	bv.words[pos/64] |= 1 << (pos % 64)
}

// Get reports whether the bit at pos is set.
func (bv *BitVector) Get(pos uint64) bool {
	return bv.words[pos/64]&(1<<(pos%64)) != 0
}

// Len returns the declared length in bits.
func (bv *BitVector) Len() uint64 {
	return bv.numBits
}

// Words returns the backing word array. The caller must not grow it.
func (bv *BitVector) Words() []uint64 {
	return bv.words
}

// OnesCount returns the number of set bits in the whole backing array.
func (bv *BitVector) OnesCount() uint64 {
	var n uint64
	for _, w := range bv.words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}

// BitCount returns an estimate of the memory footprint in bits: the backing
// array plus the header fields.
func (bv *BitVector) BitCount() uint64 {
	return uint64(len(bv.words))*64 + 64
}

// WriteTo serializes the bit vector: declared bit length as uint64 followed
// by the raw little-endian words. It implements io.WriterTo.
func (bv *BitVector) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], bv.numBits)
	n, err := w.Write(buf[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	for _, word := range bv.words {
		binary.LittleEndian.PutUint64(buf[:], word)
		n, err = w.Write(buf[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadFrom deserializes a bit vector previously written by WriteTo,
// replacing the receiver's contents. It implements io.ReaderFrom.
func (bv *BitVector) ReadFrom(r io.Reader) (int64, error) {
	var buf [8]byte

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("bitvector: read length: %w", err)
	}
	read := int64(8)
	numBits := binary.LittleEndian.Uint64(buf[:])

	words := make([]uint64, (numBits+63)/64)
	for i := range words {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return read, fmt.Errorf("bitvector: read words: %w", err)
		}
		read += 8
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}

	bv.numBits = numBits
	bv.words = words
	return read, nil
}
