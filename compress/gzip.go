package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipDecompressor reads gzip compressed files, e.g. "tran.raw.gz".
type GzipDecompressor struct{}

var _ Decompressor = (*GzipDecompressor)(nil)

// NewGzipDecompressor creates a gzip decompressor.
func NewGzipDecompressor() GzipDecompressor {
	return GzipDecompressor{}
}

// NewReader reads the gzip header from r and returns the decompressing reader.
// Concatenated gzip members are read as one stream.
func (GzipDecompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
