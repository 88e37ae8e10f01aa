package eliasfano

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/succinct/bitpack"
	"github.com/hupe1980/succinct/bitvector"
	"github.com/hupe1980/succinct/selectzero"
)

// ErrNoPredecessor is returned by Predecessor when no stored element is
// less than or equal to the query key.
var ErrNoPredecessor = errors.New("eliasfano: no element less than or equal to key")

// linearScanMax is the bucket population below which the adaptive variants
// use a backward linear scan instead of a binary search. Small buckets scan
// faster than they binary-search.
const linearScanMax = 8

// Index is the rank-enabled Elias-Fano variant: the same storage as
// Sequence plus a select-zero index over the upper bit vector, which Rank,
// RankAdaptive and Predecessor use to locate bucket boundaries.
type Index struct {
	Sequence
	selz *selectzero.Index
}

// NewIndex encodes the ascending values and builds the select-zero index.
// The dedupe flag behaves as in NewSequence, compacting the caller's slice
// in place.
func NewIndex(values []uint64, dedupe bool) (*Index, error) {
	seq, err := build(values, dedupe)
	if err != nil {
		return nil, err
	}
	return &Index{
		Sequence: *seq,
		selz:     selectzero.NewIndex(seq.upper),
	}, nil
}

// NewIndexFromBitmap encodes the set positions of a Roaring bitmap.
func NewIndexFromBitmap(rb *roaring.Bitmap) (*Index, error) {
	return NewIndex(bitmapValues(rb), false)
}

// Rank returns the number of stored elements strictly less than k.
//
// This is the reference algorithm: one select-zero lookup locates the end
// of k's bucket, then a backward walk over the bucket's unary run resolves
// ties by remainder order. The walk is O(bucket population), expected O(1)
// by the choice of the remainder width.
func (ix *Index) Rank(k uint64) uint64 {
	if ix.count == 0 {
		return 0
	}
	if k >= ix.universe {
		return ix.count
	}

	b := k >> ix.width
	pos := int64(ix.selz.SelectZero(b))
	rank := pos - int64(b)
	kLow := k & ix.mask

	lower := ix.lower.Words()
	upper := ix.upper.Words()
	for {
		rank--
		pos--
		if pos < 0 || upper[pos/64]&(1<<(pos%64)) == 0 ||
			bitpack.Get(lower, uint64(rank)*uint64(ix.width), ix.width) < kLow {
			break
		}
	}
	return uint64(rank + 1)
}

// RankAdaptive returns the same count as Rank but bounds the per-bucket
// cost: buckets with fewer than linearScanMax elements use the backward
// linear scan, larger ones a lower-bound binary search over the packed
// remainders, improving the worst case from O(N) to O(log N) when one
// bucket absorbs many elements.
func (ix *Index) RankAdaptive(k uint64) uint64 {
	if ix.count == 0 {
		return 0
	}
	if k >= ix.universe {
		return ix.count
	}

	b := k >> ix.width
	posLo, posHi := ix.bucketRange(b)
	kLow := k & ix.mask
	lower := ix.lower.Words()

	if posHi-posLo < linearScanMax {
		pos := int64(posHi)
		rank := pos - int64(b)
		upper := ix.upper.Words()
		for {
			rank--
			pos--
			if pos < int64(posLo) || upper[pos/64]&(1<<(pos%64)) == 0 ||
				bitpack.Get(lower, uint64(rank)*uint64(ix.width), ix.width) < kLow {
				break
			}
		}
		return uint64(rank + 1)
	}

	// Lower bound over ranks [posLo-b, posHi-b) for the first remainder
	// >= kLow; everything below it is < k.
	rankLo := posLo - b
	count := posHi - posLo
	for count > 0 {
		step := count / 2
		mid := rankLo + step
		if bitpack.Get(lower, mid*uint64(ix.width), ix.width) < kLow {
			rankLo = mid + 1
			count -= step + 1
		} else {
			count = step
		}
	}
	return rankLo
}

// Predecessor returns a cursor on the greatest stored element <= k, or
// ErrNoPredecessor when every stored element exceeds k. It shares the
// bucket-adaptive structure of RankAdaptive with the comparison flipped to
// strict, then resolves the cursor's upper-bit position, scanning backward
// across bucket separators when the predecessor lives in an earlier bucket.
func (ix *Index) Predecessor(k uint64) (Cursor, error) {
	if ix.count == 0 {
		return Cursor{}, ErrNoPredecessor
	}
	if k >= ix.universe {
		k = ix.universe - 1
	}

	b := k >> ix.width
	posLo, posHi := ix.bucketRange(b)
	kLow := k & ix.mask
	lower := ix.lower.Words()

	var pos, rank int64
	if posHi-posLo < linearScanMax {
		pos = int64(posHi)
		rank = pos - int64(b)
		for {
			rank--
			pos--
			if pos < int64(posLo) ||
				bitpack.Get(lower, uint64(rank)*uint64(ix.width), ix.width) <= kLow {
				break
			}
		}
	} else {
		rankLo := posLo - b
		rankHi := posHi - b
		count := posHi - posLo
		for count > 0 {
			step := count / 2
			mid := rankLo + step
			if bitpack.Get(lower, mid*uint64(ix.width), ix.width) <= kLow {
				rankLo = mid + 1
				count -= step + 1
			} else {
				count = step
			}
		}
		rank = int64(rankLo) - 1
		pos = int64(posHi) - int64(rankHi-rankLo) - 1
	}

	if rank < 0 {
		return Cursor{}, ErrNoPredecessor
	}

	// The computed position can land on a zero between buckets; walk back
	// to the predecessor's actual set bit.
	upper := ix.upper.Words()
	if pos > 0 && upper[pos/64]&(1<<(pos%64)) == 0 {
		w := pos / 64
		word := upper[w] & ((1 << (pos % 64)) - 1)
		for word == 0 {
			w--
			word = upper[w]
		}
		pos = w*64 + int64(bits.Len64(word)) - 1
	}

	return Cursor{
		seq:   &ix.Sequence,
		rank:  uint64(rank),
		pos:   uint64(pos),
		valid: true,
	}, nil
}

// bucketRange returns the half-open range [posLo, posHi) of bucket b's
// unary run in the upper bit vector.
func (ix *Index) bucketRange(b uint64) (uint64, uint64) {
	if b == 0 {
		return 0, ix.selz.SelectZero(0)
	}
	prev, cur := ix.selz.SelectZero2(b - 1)
	return prev + 1, cur
}

// BitCount returns an estimate of the memory footprint in bits including
// the select-zero index.
func (ix *Index) BitCount() uint64 {
	return ix.Sequence.BitCount() + ix.selz.BitCount() + 64
}

// WriteTo serializes the index: universe, remainder width, element count
// and remainder mask as fixed-width little-endian integers, followed by the
// select-zero index, the upper bit vector and the packed remainder store in
// their own serialized forms. The layout carries no version tag and is
// position-dependent; producers and consumers must match structural
// versions exactly. It implements io.WriterTo.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	var written int64
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], ix.universe)
	n, err := w.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint32(buf[:4], uint32(ix.width))
	n, err = w.Write(buf[:4])
	written += int64(n)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint64(buf[:], ix.count)
	n, err = w.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint64(buf[:], ix.mask)
	n, err = w.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, wt := range []io.WriterTo{ix.selz, ix.upper, ix.lower} {
		m, err := wt.WriteTo(w)
		written += m
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadFrom deserializes an index written by WriteTo into the receiver,
// re-attaching the select-zero index to the restored upper bit vector.
// It implements io.ReaderFrom.
func (ix *Index) ReadFrom(r io.Reader) (int64, error) {
	var read int64
	var buf [8]byte

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return read, fmt.Errorf("eliasfano: read universe: %w", err)
	}
	read += 8
	ix.universe = binary.LittleEndian.Uint64(buf[:])

	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return read, fmt.Errorf("eliasfano: read width: %w", err)
	}
	read += 4
	ix.width = uint(binary.LittleEndian.Uint32(buf[:4]))

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return read, fmt.Errorf("eliasfano: read count: %w", err)
	}
	read += 8
	ix.count = binary.LittleEndian.Uint64(buf[:])

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return read, fmt.Errorf("eliasfano: read mask: %w", err)
	}
	read += 8
	ix.mask = binary.LittleEndian.Uint64(buf[:])

	ix.selz = new(selectzero.Index)
	ix.upper = new(bitvector.BitVector)
	ix.lower = new(bitvector.BitVector)
	for _, rt := range []io.ReaderFrom{ix.selz, ix.upper, ix.lower} {
		m, err := rt.ReadFrom(r)
		read += m
		if err != nil {
			return read, err
		}
	}
	ix.selz.Bind(ix.upper)

	return read, nil
}
