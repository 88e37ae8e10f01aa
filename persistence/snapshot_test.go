package persistence

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/succinct/eliasfano"
	"github.com/hupe1980/succinct/testutil"
)

func buildIndex(t *testing.T, n int, universe uint64) *eliasfano.Index {
	t.Helper()

	values := testutil.NewRNG(17).SortedUnique(n, universe)

	ix, err := eliasfano.NewIndex(values, false)
	require.NoError(t, err)
	return ix
}

func TestSnapshotRoundTrip(t *testing.T) {
	ix := buildIndex(t, 2000, 1_000_000)

	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZSTD} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, ix, codec))

		got, err := Read(&buf)
		require.NoError(t, err)

		require.Equal(t, ix.Size(), got.Size())
		require.Equal(t, ix.Universe(), got.Universe())
		for k := uint64(0); k < ix.Universe(); k += 997 {
			require.Equal(t, ix.Rank(k), got.Rank(k), "codec %d rank(%d)", codec, k)
		}
	}
}

func TestSnapshotEmptyIndex(t *testing.T) {
	ix, err := eliasfano.NewIndex(nil, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ix, CodecZSTD))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got.Size())
	require.Equal(t, uint64(0), got.Rank(42))
}

func TestSnapshotBadMagic(t *testing.T) {
	ix := buildIndex(t, 10, 1000)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ix, CodecNone))

	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[0:], 0xDEADBEEF)

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestSnapshotChecksumMismatch(t *testing.T) {
	ix := buildIndex(t, 100, 10_000)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ix, CodecNone))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrChecksum)
}

func TestSnapshotUnknownCodec(t *testing.T) {
	ix := buildIndex(t, 10, 1000)

	var buf bytes.Buffer
	err := Write(&buf, ix, Codec(99))
	require.ErrorIs(t, err, ErrInvalidCodec)
}
