package eliasfano

import (
	"bytes"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/succinct/testutil"
)

// naiveRank counts the values strictly less than k.
func naiveRank(values []uint64, k uint64) uint64 {
	var n uint64
	for _, v := range values {
		if v < k {
			n++
		}
	}
	return n
}

func TestScenario(t *testing.T) {
	ix, err := NewIndex([]uint64{3, 5, 5, 9, 20}, true)
	require.NoError(t, err)

	require.Equal(t, uint64(4), ix.Size())
	require.Equal(t, uint64(21), ix.Universe())

	assert.Equal(t, uint64(1), ix.Rank(5))
	assert.Equal(t, uint64(2), ix.Rank(6))
	assert.Equal(t, uint64(0), ix.Rank(0))
	assert.Equal(t, uint64(4), ix.Rank(21))

	p, err := ix.Predecessor(6)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.Value())

	_, err = ix.Predecessor(2)
	require.ErrorIs(t, err, ErrNoPredecessor)
}

func TestEmpty(t *testing.T) {
	ix, err := NewIndex(nil, false)
	require.NoError(t, err)

	require.Equal(t, uint64(0), ix.Size())
	assert.Equal(t, uint64(0), ix.Rank(0))
	assert.Equal(t, uint64(0), ix.Rank(12345))
	assert.Equal(t, uint64(0), ix.RankAdaptive(99))

	_, err = ix.Predecessor(7)
	require.ErrorIs(t, err, ErrNoPredecessor)

	require.False(t, ix.At(0).Valid())
}

func TestUnsorted(t *testing.T) {
	_, err := NewIndex([]uint64{5, 3, 9}, false)
	require.ErrorIs(t, err, ErrUnsorted)

	_, err = NewSequence([]uint64{1, 2, 2, 1}, true)
	require.ErrorIs(t, err, ErrUnsorted)
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(1)
	values := rng.SortedUnique(500, 100_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	for _, v := range values {
		p, err := ix.Predecessor(v)
		require.NoError(t, err)
		require.Equal(t, v, p.Value())

		require.Equal(t, uint64(1), ix.Rank(v+1)-ix.Rank(v), "value %d", v)
	}
}

func TestRankMonotonicityAndAgainstNaive(t *testing.T) {
	rng := testutil.NewRNG(2)
	values := rng.SortedUnique(200, 5_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	prev := uint64(0)
	for k := uint64(0); k <= ix.Universe(); k++ {
		r := ix.Rank(k)
		require.Equal(t, naiveRank(values, k), r, "rank(%d)", k)
		require.GreaterOrEqual(t, r, prev)
		prev = r
	}
	require.Equal(t, ix.Size(), ix.Rank(ix.Universe()))
}

func TestRankVariantsAgree(t *testing.T) {
	rng := testutil.NewRNG(3)

	// Sparse: bucket populations stay below the linear-scan threshold.
	// Clustered: many values share buckets, forcing the binary-search path.
	sparse := rng.SortedUnique(100, 1_000_000)

	var clustered []uint64
	for base := uint64(0); base < 20; base++ {
		for off := uint64(0); off < 40; off++ {
			clustered = append(clustered, base*100_000+off)
		}
	}

	for name, values := range map[string][]uint64{"sparse": sparse, "clustered": clustered} {
		ix, err := NewIndex(values, false)
		require.NoError(t, err)

		probes := append([]uint64{0, 1, ix.Universe() - 1, ix.Universe(), ix.Universe() + 7}, values...)
		for i := 0; i < 2000; i++ {
			probes = append(probes, rng.Uint64n(ix.Universe()+2))
		}
		for _, k := range probes {
			require.Equal(t, ix.Rank(k), ix.RankAdaptive(k), "%s rank(%d)", name, k)
		}
	}
}

func TestRankCursorAgreement(t *testing.T) {
	rng := testutil.NewRNG(4)
	values := rng.SortedUnique(300, 50_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	for r := uint64(0); r < ix.Size(); r++ {
		c := ix.At(r)
		require.True(t, c.Valid())
		require.Equal(t, r, c.Rank())
		require.Equal(t, r, ix.Rank(c.Value()))
		require.Equal(t, r+1, ix.Rank(c.Value()+1))
	}
}

func TestEnumeration(t *testing.T) {
	rng := testutil.NewRNG(5)
	values := rng.SortedUnique(1000, 1_000_000)

	seq, err := NewSequence(values, false)
	require.NoError(t, err)

	var got []uint64
	for v := range seq.All() {
		got = append(got, v)
	}
	require.Equal(t, values, got)

	// Cursor advance visits the same elements.
	c := seq.At(0)
	for i, want := range values {
		require.True(t, c.Valid())
		require.Equal(t, want, c.Value(), "rank %d", i)
		c.Next()
	}
	require.False(t, c.Valid())
	require.False(t, c.Next())
}

func TestAtFromArbitraryRank(t *testing.T) {
	values := []uint64{0, 1, 2, 63, 64, 65, 1_000, 65_536}
	seq, err := NewSequence(values, false)
	require.NoError(t, err)

	for start := range values {
		c := seq.At(uint64(start))
		for _, want := range values[start:] {
			require.True(t, c.Valid())
			require.Equal(t, want, c.Value())
			c.Next()
		}
		require.False(t, c.Valid())
	}
}

func TestPredecessor(t *testing.T) {
	values := []uint64{10, 20, 21, 22, 23, 24, 25, 26, 27, 28, 1_000}
	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	cases := []struct {
		k    uint64
		want uint64
	}{
		{10, 10},
		{15, 10},
		{20, 20},
		{24, 24},
		{29, 28},
		{999, 28},
		{1_000, 1_000},
		{50_000, 1_000},
	}
	for _, tc := range cases {
		p, err := ix.Predecessor(tc.k)
		require.NoError(t, err, "predecessor(%d)", tc.k)
		require.Equal(t, tc.want, p.Value(), "predecessor(%d)", tc.k)
	}

	for _, k := range []uint64{0, 5, 9} {
		_, err := ix.Predecessor(k)
		require.ErrorIs(t, err, ErrNoPredecessor, "predecessor(%d)", k)
	}
}

func TestPredecessorRandom(t *testing.T) {
	rng := testutil.NewRNG(6)
	values := rng.SortedUnique(400, 20_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	for k := uint64(0); k < ix.Universe()+10; k++ {
		want, ok := uint64(0), false
		for _, v := range values {
			if v <= k {
				want, ok = v, true
			}
		}

		p, err := ix.Predecessor(k)
		if !ok {
			require.ErrorIs(t, err, ErrNoPredecessor, "predecessor(%d)", k)
			continue
		}
		require.NoError(t, err, "predecessor(%d)", k)
		require.Equal(t, want, p.Value(), "predecessor(%d)", k)
		require.Equal(t, ix.Rank(want), p.Rank())
	}
}

func TestDuplicatesKept(t *testing.T) {
	ix, err := NewIndex([]uint64{7, 7, 7, 9}, false)
	require.NoError(t, err)

	require.Equal(t, uint64(4), ix.Size())
	assert.Equal(t, uint64(0), ix.Rank(7))
	assert.Equal(t, uint64(3), ix.Rank(8))
	assert.Equal(t, uint64(4), ix.Rank(10))
}

func TestFromBitmap(t *testing.T) {
	rb := roaring.New()
	rng := testutil.NewRNG(8)
	for i := 0; i < 500; i++ {
		rb.Add(uint32(rng.Uint64n(100_000)))
	}

	ix, err := NewIndexFromBitmap(rb)
	require.NoError(t, err)
	require.Equal(t, rb.GetCardinality(), ix.Size())

	for k := uint64(0); k <= ix.Universe(); k += 37 {
		require.Equal(t, uint64(rb.Rank(uint32(k)))-boolToUint64(rb.Contains(uint32(k))), ix.Rank(k), "rank(%d)", k)
	}

	var got []uint64
	for v := range ix.All() {
		got = append(got, v)
	}
	want := make([]uint64, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		want = append(want, uint64(it.Next()))
	}
	require.Equal(t, want, got)
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func TestSerializationRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(9)
	values := rng.SortedUnique(300, 1_000_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	written, err := ix.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), written)

	var got Index
	read, err := got.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, written, read)

	require.Equal(t, ix.Size(), got.Size())
	require.Equal(t, ix.Universe(), got.Universe())
	require.Equal(t, ix.BucketWidth(), got.BucketWidth())

	probes := append([]uint64{0, got.Universe()}, values...)
	for i := 0; i < 500; i++ {
		probes = append(probes, rng.Uint64n(got.Universe()+1))
	}
	for _, k := range probes {
		require.Equal(t, ix.Rank(k), got.Rank(k))

		p1, err1 := ix.Predecessor(k)
		p2, err2 := got.Predecessor(k)
		require.Equal(t, err1, err2)
		if err1 == nil {
			require.Equal(t, p1.Value(), p2.Value())
			require.Equal(t, p1.Rank(), p2.Rank())
		}
	}
}

func TestBitCount(t *testing.T) {
	rng := testutil.NewRNG(10)
	values := rng.SortedUnique(1000, 1_000_000)

	ix, err := NewIndex(values, false)
	require.NoError(t, err)

	// The encoding must land well below the 64 bits per element of a plain
	// array for a sparse sequence of this density.
	require.Less(t, ix.BitCount(), uint64(len(values))*64)
	require.Greater(t, ix.BitCount(), uint64(0))
}

func TestBucketWidthChoice(t *testing.T) {
	// U=1024, N=4 -> l = floor(log2(256)) = 8.
	ix, err := NewIndex([]uint64{1, 100, 600, 1023}, false)
	require.NoError(t, err)
	require.Equal(t, uint(8), ix.BucketWidth())

	// Dense: U/N < 2 -> l = 0.
	dense := make([]uint64, 100)
	for i := range dense {
		dense[i] = uint64(i)
	}
	ix, err = NewIndex(dense, false)
	require.NoError(t, err)
	require.Equal(t, uint(0), ix.BucketWidth())
	for k := uint64(0); k <= 101; k++ {
		require.Equal(t, naiveRank(dense, k), ix.Rank(k))
		require.Equal(t, ix.Rank(k), ix.RankAdaptive(k))
	}
}
