package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// S2Decompressor reads S2 and Snappy framed streams.
type S2Decompressor struct{}

var _ Decompressor = (*S2Decompressor)(nil)

// NewS2Decompressor creates an S2 decompressor.
func NewS2Decompressor() S2Decompressor {
	return S2Decompressor{}
}

// NewReader returns an S2 stream reader. Snappy framed input is accepted as well.
func (S2Decompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}
