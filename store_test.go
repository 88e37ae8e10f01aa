package succinct

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/succinct/blobstore"
	"github.com/hupe1980/succinct/eliasfano"
	"github.com/hupe1980/succinct/persistence"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore())

	ix, err := eliasfano.NewIndex([]uint64{3, 5, 9, 20, 4096}, false)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "doc-ids", ix))

	loaded, err := store.Load(ctx, "doc-ids")
	require.NoError(t, err)

	assert.Equal(t, ix.Size(), loaded.Size())
	assert.Equal(t, ix.Universe(), loaded.Universe())
	for i := uint64(0); i < ix.Size(); i++ {
		assert.Equal(t, ix.At(i).Value(), loaded.At(i).Value())
	}
	assert.Equal(t, ix.Rank(10), loaded.Rank(10))
}

func TestStore_LoadNotFound(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CodecOption(t *testing.T) {
	ctx := context.Background()

	for _, codec := range []persistence.Codec{persistence.CodecNone, persistence.CodecLZ4, persistence.CodecZSTD} {
		t.Run(fmt.Sprintf("codec_%d", codec), func(t *testing.T) {
			store := NewStore(blobstore.NewMemoryStore(), WithCodec(codec))

			ix, err := eliasfano.NewIndex([]uint64{1, 2, 3, 1000}, false)
			require.NoError(t, err)

			require.NoError(t, store.Save(ctx, "ix", ix))

			loaded, err := store.Load(ctx, "ix")
			require.NoError(t, err)
			assert.Equal(t, ix.Size(), loaded.Size())
		})
	}
}

func TestStore_SaveAll(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore(), WithConcurrency(2))

	indexes := make(map[string]*eliasfano.Index)
	for i := 0; i < 8; i++ {
		values := make([]uint64, 100)
		for j := range values {
			values[j] = uint64(i*1000 + j*3)
		}
		ix, err := eliasfano.NewIndex(values, false)
		require.NoError(t, err)
		indexes[fmt.Sprintf("index-%d", i)] = ix
	}

	require.NoError(t, store.SaveAll(ctx, indexes))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 8)

	for name, ix := range indexes {
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, ix.Size(), loaded.Size())
		assert.Equal(t, ix.At(0).Value(), loaded.At(0).Value())
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore())

	ix, err := eliasfano.NewIndex([]uint64{7}, false)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "tmp", ix))
	require.NoError(t, store.Delete(ctx, "tmp"))

	_, err = store.Load(ctx, "tmp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()

	blobs, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	store := NewStore(blobs, WithLogger(NoopLogger()))

	ix, err := eliasfano.NewIndex([]uint64{0, 1, 63, 64, 65, 1 << 20}, true)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "local.sef", ix))

	loaded, err := store.Load(ctx, "local.sef")
	require.NoError(t, err)

	var values []uint64
	for v := range loaded.All() {
		values = append(values, v)
	}
	assert.Equal(t, []uint64{0, 1, 63, 64, 65, 1 << 20}, values)
}
