//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// NewReader returns a streaming libzstd decoder reading from r.
func (ZstdDecompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr := gozstd.NewReader(r)

	return readCloser{
		Reader: zr,
		close: func() error {
			zr.Release()
			return nil
		},
	}, nil
}

// readCloser adapts a reader and a release function to io.ReadCloser.
type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	return rc.close()
}
