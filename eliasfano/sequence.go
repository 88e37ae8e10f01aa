package eliasfano

import (
	"errors"
	"iter"
	"math/bits"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/succinct/bitpack"
	"github.com/hupe1980/succinct/bitvector"
)

// ErrUnsorted is returned when construction input is not ascending.
var ErrUnsorted = errors.New("eliasfano: input values not in ascending order")

// Sequence is the enumeration-only Elias-Fano variant: it stores the packed
// remainders and the unary upper bit vector but no select-zero index, so it
// supports At and All but not rank or predecessor queries. Use Index when
// those are needed.
type Sequence struct {
	universe uint64 // exclusive upper bound on stored values
	count    uint64 // number of stored elements
	width    uint   // remainder width l, constant for the lifetime
	mask     uint64 // low-bits mask, (1<<width)-1
	lower    *bitvector.BitVector
	upper    *bitvector.BitVector
}

// NewSequence encodes the ascending values. With dedupe set, duplicates are
// collapsed in place first: the caller's slice is compacted and must not be
// relied on afterwards. Without dedupe, equal neighbors are kept and count
// toward N. Values out of order yield ErrUnsorted. An empty input produces
// a valid empty sequence.
func NewSequence(values []uint64, dedupe bool) (*Sequence, error) {
	return build(values, dedupe)
}

// NewSequenceFromBitmap encodes the set positions of a Roaring bitmap,
// which are ascending and duplicate-free by construction.
func NewSequenceFromBitmap(rb *roaring.Bitmap) (*Sequence, error) {
	return build(bitmapValues(rb), false)
}

func bitmapValues(rb *roaring.Bitmap) []uint64 {
	values := make([]uint64, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		values = append(values, uint64(it.Next()))
	}
	return values
}

func build(values []uint64, dedupe bool) (*Sequence, error) {
	if dedupe {
		values = slices.Compact(values)
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return nil, ErrUnsorted
		}
	}

	n := uint64(len(values))
	if n == 0 {
		return &Sequence{
			lower: bitvector.New(0),
			upper: bitvector.New(0),
		}, nil
	}

	universe := values[n-1] + 1

	var width uint
	if universe/n > 0 {
		width = uint(bits.Len64(universe/n) - 1)
	}
	mask := bitpack.Mask(width)

	seq := &Sequence{
		universe: universe,
		count:    n,
		width:    width,
		mask:     mask,
		lower:    bitvector.New(n * uint64(width)),
		upper:    bitvector.New(n + (universe >> width) + 1),
	}

	lower := seq.lower.Words()
	for i, v := range values {
		if width != 0 {
			bitpack.Set(lower, uint64(i)*uint64(width), width, v&mask)
		}
		seq.upper.Set((v >> width) + uint64(i))
	}

	return seq, nil
}

// Size returns the number of stored elements.
func (s *Sequence) Size() uint64 {
	return s.count
}

// Universe returns the exclusive upper bound on stored values. It is zero
// for an empty sequence.
func (s *Sequence) Universe() uint64 {
	return s.universe
}

// BucketWidth returns the remainder width l.
func (s *Sequence) BucketWidth() uint {
	return s.width
}

// value reconstructs the element at the given rank whose upper bit sits at
// pos: the bucket index shifted back up, OR-ed with the packed remainder.
func (s *Sequence) value(rank, pos uint64) uint64 {
	return (pos-rank)<<s.width | bitpack.Get(s.lower.Words(), rank*uint64(s.width), s.width)
}

// At returns a cursor positioned on the element of the given rank, resolved
// to its actual upper bit so it is valid to dereference immediately. For
// rank >= Size the cursor is invalid.
func (s *Sequence) At(rank uint64) Cursor {
	if rank >= s.count {
		return Cursor{}
	}

	// Select the rank-th set bit in the upper vector by word-wise popcount.
	words := s.upper.Words()
	remaining := rank
	for w, word := range words {
		n := uint64(bits.OnesCount64(word))
		if n > remaining {
			return Cursor{
				seq:   s,
				rank:  rank,
				pos:   uint64(w)*64 + selectInWord(word, remaining),
				valid: true,
			}
		}
		remaining -= n
	}
	return Cursor{}
}

// All returns an iterator over the stored values in ascending order.
func (s *Sequence) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for c := s.At(0); c.Valid(); c.Next() {
			if !yield(c.Value()) {
				return
			}
		}
	}
}

// BitCount returns an estimate of the memory footprint in bits: both owned
// bit arrays plus the fixed header fields.
func (s *Sequence) BitCount() uint64 {
	return s.upper.BitCount() + s.lower.BitCount() + 4*64
}

// selectInWord returns the position of the r-th set bit in w (0-indexed).
// The caller guarantees w has more than r set bits.
func selectInWord(w uint64, r uint64) uint64 {
	for ; r > 0; r-- {
		w &= w - 1
	}
	return uint64(bits.TrailingZeros64(w))
}
