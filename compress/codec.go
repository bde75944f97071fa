// Package compress opens compressed simulator result files transparently.
//
// Large transient runs are commonly archived compressed. Detect recognizes the
// supported containers by their magic bytes and NewReader wraps the raw source in the
// matching streaming decompressor, so format detection and row reading see the plain
// result file:
//
//	head, _ := br.Peek(compress.MagicSize)
//	if ct := compress.Detect(head); ct != format.CompressionNone {
//	    rc, err := compress.NewReader(ct, br)
//	    ...
//	}
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
)

// MagicSize is the number of leading bytes Detect needs to recognize every container.
const MagicSize = 10

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}

	// S2 and Snappy framed streams start with a stream identifier chunk.
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// Decompressor wraps a compressed source in a streaming reader.
//
// Implementations are stateless and safe for concurrent use; every call to NewReader
// returns an independent reader that must be closed by the caller.
type Decompressor interface {
	// NewReader returns a reader yielding the decompressed content of r.
	//
	// Closing the returned reader releases decompressor resources but does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

var builtinDecompressors = map[format.CompressionType]Decompressor{
	format.CompressionNone: NewNoOpDecompressor(),
	format.CompressionGzip: NewGzipDecompressor(),
	format.CompressionZstd: NewZstdDecompressor(),
	format.CompressionS2:   NewS2Decompressor(),
	format.CompressionLZ4:  NewLZ4Decompressor(),
}

// Detect returns the compression type whose magic bytes start head.
//
// Returns CompressionNone when head matches no supported container.
func Detect(head []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return format.CompressionGzip
	case bytes.HasPrefix(head, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(head, s2Magic), bytes.HasPrefix(head, snappyMagic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// GetDecompressor retrieves the built-in Decompressor for the compression type.
func GetDecompressor(compressionType format.CompressionType) (Decompressor, error) {
	if d, ok := builtinDecompressors[compressionType]; ok {
		return d, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// NewReader wraps r in the decompressor for compressionType.
//
// Parameters:
//   - compressionType: Container type, usually from Detect
//   - r: Compressed source
//
// Returns:
//   - io.ReadCloser: Decompressed stream; Close does not close r
//   - error: ErrUnsupportedCompression, or the decompressor's header error
func NewReader(compressionType format.CompressionType, r io.Reader) (io.ReadCloser, error) {
	d, err := GetDecompressor(compressionType)
	if err != nil {
		return nil, err
	}

	rc, err := d.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s stream: %w", compressionType, err)
	}

	return rc, nil
}
