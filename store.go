package succinct

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/succinct/blobstore"
	"github.com/hupe1980/succinct/eliasfano"
	"github.com/hupe1980/succinct/persistence"
)

// ErrNotFound is returned when a named index does not exist in the store.
var ErrNotFound = blobstore.ErrNotFound

// Store persists named eliasfano indexes through a blob store.
//
// Snapshots are written in the persistence format, so a Store over a
// LocalStore produces the same files as persistence.Write against an
// os.File.
type Store struct {
	blobs       blobstore.BlobStore
	codec       persistence.Codec
	logger      *Logger
	concurrency int
}

// NewStore creates a snapshot store on top of the given blob store.
func NewStore(blobs blobstore.BlobStore, optFns ...Option) *Store {
	opts := options{
		codec:       persistence.CodecZSTD,
		logger:      NoopLogger(),
		concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		blobs:       blobs,
		codec:       opts.codec,
		logger:      opts.logger,
		concurrency: opts.concurrency,
	}
}

// Save writes a snapshot of ix under the given name, replacing any
// previous snapshot with that name.
func (s *Store) Save(ctx context.Context, name string, ix *eliasfano.Index) error {
	var buf bytes.Buffer
	if err := persistence.Write(&buf, ix, s.codec); err != nil {
		s.logger.LogSave(ctx, name, 0, 0, err)
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}

	if err := s.blobs.Put(ctx, name, buf.Bytes()); err != nil {
		s.logger.LogSave(ctx, name, 0, 0, err)
		return fmt.Errorf("store snapshot %q: %w", name, err)
	}

	s.logger.LogSave(ctx, name, ix.Size(), buf.Len(), nil)
	return nil
}

// SaveAll persists several indexes concurrently. It returns the first
// error encountered; remaining uploads are cancelled.
func (s *Store) SaveAll(ctx context.Context, indexes map[string]*eliasfano.Index) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for name, ix := range indexes {
		g.Go(func() error {
			return s.Save(ctx, name, ix)
		})
	}
	return g.Wait()
}

// Load reads the snapshot with the given name and rebuilds the index.
func (s *Store) Load(ctx context.Context, name string) (*eliasfano.Index, error) {
	blob, err := s.blobs.Open(ctx, name)
	if err != nil {
		s.logger.LogLoad(ctx, name, 0, err)
		return nil, fmt.Errorf("open snapshot %q: %w", name, err)
	}
	defer blob.Close()

	var r io.Reader = io.NewSectionReader(blob, 0, blob.Size())
	if m, ok := blob.(blobstore.Mappable); ok {
		// Mapped blobs decode straight from the mapping, skipping the copy.
		if data, err := m.Bytes(); err == nil {
			r = bytes.NewReader(data)
		}
	}

	ix, err := persistence.Read(r)
	if err != nil {
		s.logger.LogLoad(ctx, name, 0, err)
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}

	s.logger.LogLoad(ctx, name, ix.Size(), nil)
	return ix, nil
}

// Delete removes the snapshot with the given name.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.blobs.Delete(ctx, name)
}

// List returns the names of all stored snapshots with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return s.blobs.List(ctx, prefix)
}
