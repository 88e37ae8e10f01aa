// Package succinct provides compressed data structures for sorted integer
// sequences, built around the Elias-Fano encoding.
//
// The core packages are:
//
//   - eliasfano: quasi-succinct encoding of monotone uint64 sequences with
//     constant-time access, rank and predecessor queries
//   - selectzero: sampled select-zero index over bit vectors
//   - bitvector, bitpack: plain and fixed-width packed bit storage
//   - persistence: versioned snapshot format with optional LZ4/Zstandard
//     compression and checksum verification
//   - blobstore: pluggable snapshot storage (memory, local disk with mmap,
//     MinIO, Amazon S3 with an optional DynamoDB snapshot pointer)
//
// # Quick Start
//
// Build an index over a sorted sequence and query it:
//
//	ix, err := eliasfano.NewIndex([]uint64{3, 5, 9, 20}, false)
//	if err != nil {
//	    panic(err)
//	}
//	v := ix.At(2).Value()      // 9
//	r := ix.Rank(6)            // 2, number of values < 6
//	p, _ := ix.Predecessor(10) // cursor at 9, largest value <= 10
//
// Persist named indexes through a blob store:
//
//	store := succinct.NewStore(blobstore.NewMemoryStore(),
//	    succinct.WithCodec(persistence.CodecZSTD))
//	if err := store.Save(ctx, "doc-ids", ix); err != nil {
//	    panic(err)
//	}
//	ix2, err := store.Load(ctx, "doc-ids")
package succinct
