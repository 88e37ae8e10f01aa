// Package blobstore abstracts the storage backends index snapshots are
// written to and read from: local filesystem, in-memory (tests), and
// S3-compatible object stores in the subpackages.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing and retrieving immutable data
// blobs (index snapshots).
type BlobStore interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a new blob for streaming writes. The blob becomes
	// visible when Close returns.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob in one call, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a write-only handle to a blob under construction.
type WritableBlob interface {
	io.Writer
	// Close finishes the write and publishes the blob.
	io.Closer
}

// Mappable is an optional interface for Blobs that expose their content as
// a byte slice without copying. The slice is valid until Close.
type Mappable interface {
	Bytes() ([]byte, error)
}
