package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/succinct/eliasfano"
)

// zstd encoder/decoder pools; the encoder in particular is expensive to
// construct.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Write frames ix into w: header, then the index payload compressed with
// the given codec. Incompressible payloads fall back to CodecNone so reads
// never pay for useless decompression.
func Write(w io.Writer, ix *eliasfano.Index, codec Codec) error {
	var payload bytes.Buffer
	if _, err := ix.WriteTo(&payload); err != nil {
		return fmt.Errorf("serialize index: %w", err)
	}
	raw := payload.Bytes()

	stored, err := compress(raw, codec)
	if err != nil {
		return err
	}
	if len(stored) >= len(raw) {
		stored = raw
		codec = CodecNone
	}

	header := FileHeader{
		Magic:            MagicNumber,
		Version:          Version,
		Codec:            uint8(codec),
		UncompressedSize: uint64(len(raw)),
		CompressedSize:   uint64(len(stored)),
		Checksum:         crc32.ChecksumIEEE(stored),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Read reads a snapshot written by Write and reconstructs the index,
// verifying magic, version and payload checksum.
func Read(r io.Reader) (*eliasfano.Index, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}

	stored := make([]byte, header.CompressedSize)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if sum := crc32.ChecksumIEEE(stored); sum != header.Checksum {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksum, sum, header.Checksum)
	}

	raw, err := decompress(stored, Codec(header.Codec), header.UncompressedSize)
	if err != nil {
		return nil, err
	}

	ix := new(eliasfano.Index)
	if _, err := ix.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("deserialize index: %w", err)
	}
	return ix, nil
}

func compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil

	case CodecLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible; Write falls back to CodecNone.
			return data, nil
		}
		return dst[:n], nil

	case CodecZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCodec, codec)
	}
}

func decompress(stored []byte, codec Codec, uncompressedSize uint64) ([]byte, error) {
	switch codec {
	case CodecNone:
		return stored, nil

	case CodecLZ4:
		raw := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(n) != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: size mismatch: got %d, want %d", n, uncompressedSize)
		}
		return raw, nil

	case CodecZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		raw, err := dec.DecodeAll(stored, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(raw)) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: size mismatch: got %d, want %d", len(raw), uncompressedSize)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCodec, codec)
	}
}
