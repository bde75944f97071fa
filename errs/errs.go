// Package errs defines the sentinel errors returned by spicestream packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should match them with errors.Is:
//
//	s, err := stream.Open("tran.raw")
//	if errors.Is(err, errs.ErrUnrecognizedFormat) {
//	    // no registered format claimed the file
//	}
package errs

import "errors"

var (
	// ErrUnrecognizedFormat is returned when no registered format claims a file, or when
	// an explicitly requested format name is not registered.
	ErrUnrecognizedFormat = errors.New("unrecognized format")

	// ErrInconsistentHeader is returned when declared variable or column counts in a file
	// header do not reconcile.
	ErrInconsistentHeader = errors.New("inconsistent header")

	// ErrMalformedRow is returned or reported when the tokens of a row do not parse as the
	// expected numeric shape.
	ErrMalformedRow = errors.New("malformed row")

	// ErrUnsupportedQuantizedType is returned when a quantized variable has a type without
	// a resolution scalar.
	ErrUnsupportedQuantizedType = errors.New("unsupported quantized variable type")

	// ErrTruncatedFile is returned when end of file is reached where a complete row or
	// header was expected.
	ErrTruncatedFile = errors.New("truncated file")

	// ErrIO wraps failures of the underlying reader.
	ErrIO = errors.New("i/o error")

	// ErrShortBuffer is returned when a caller-provided output buffer is smaller than the
	// number of values a read produces.
	ErrShortBuffer = errors.New("output buffer too small")

	// ErrPushbackFull is returned when a line is pushed back while another pushed-back line
	// is still pending.
	ErrPushbackFull = errors.New("pushback already pending")

	// ErrUnsupportedCompression is returned for a compression type without a decompressor.
	ErrUnsupportedCompression = errors.New("unsupported compression")
)
