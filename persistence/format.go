// Package persistence frames serialized Elias-Fano indexes for storage: a
// magic+version header, an optional compression codec and a CRC32 checksum
// around the index's own position-dependent binary form.
package persistence

import "errors"

const (
	// MagicNumber identifies succinct snapshot files (ASCII: "SEF1").
	MagicNumber = 0x53454631
	// Version is the current snapshot format version (v1.0.0).
	Version = 0x00010000
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidCodec   = errors.New("unknown compression codec")
	ErrChecksum       = errors.New("payload checksum mismatch")
)

// Codec selects the compression applied to the serialized index payload.
type Codec uint8

const (
	// CodecNone stores the payload uncompressed.
	CodecNone Codec = 0
	// CodecLZ4 uses LZ4 block compression (fast, modest ratio).
	CodecLZ4 Codec = 1
	// CodecZSTD uses zstd (better ratio, good for cold snapshots).
	CodecZSTD Codec = 2
)

// FileHeader is the fixed-size header at the start of every snapshot.
type FileHeader struct {
	Magic            uint32
	Version          uint32
	Codec            uint8
	Padding          [3]byte
	UncompressedSize uint64
	CompressedSize   uint64
	Checksum         uint32 // CRC32 (IEEE) of the stored payload bytes
	Reserved         [8]byte
}
