//go:build !(cgo && gozstd)

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewReader returns a streaming zstd decoder reading from r.
func (ZstdDecompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1), // rows are consumed sequentially
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, err
	}

	return decoder.IOReadCloser(), nil
}
