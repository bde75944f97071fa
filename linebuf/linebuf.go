// Package linebuf reads logical text lines of arbitrary length into reusable buffers.
//
// Every text-based result format reads one line per row, so the primitive is built to
// run without allocation once its buffer has grown to the longest line seen:
//
//	buf := linebuf.NewBuffer(linebuf.DefaultSize)
//	for {
//	    line, err := buf.ReadLine(r)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// The package also provides Fields and ParseFloat, which split and parse a line in place
// without copying it into strings.
package linebuf

import (
	"bufio"
	"errors"
	"io"
)

// DefaultSize is the initial capacity of a line buffer.
const DefaultSize = 256

// ReadLine reads one line from r into buf and returns it without its terminator.
//
// The line is accumulated in buf, which is grown by doubling its capacity when the line
// does not fit. The returned slice shares buf's backing array when no growth was needed;
// callers keep the returned slice (resliced to zero length) for the next call to reuse
// the grown capacity.
//
// A trailing "\n" and a "\r" preceding it are stripped. A final line without a
// terminator is returned with a nil error. io.EOF is returned only when no byte could be
// read. Any other error from r is returned as is together with the bytes read so far.
//
// Parameters:
//   - r: Buffered source reader
//   - buf: Reusable line buffer; its contents are overwritten
//
// Returns:
//   - []byte: The line content, length is the logical line length
//   - error: io.EOF at end of input, or the reader's error
func ReadLine(r *bufio.Reader, buf []byte) ([]byte, error) {
	line := buf[:0]
	read := false

	for {
		frag, err := r.ReadSlice('\n')
		if len(frag) > 0 {
			read = true
		}

		switch {
		case err == nil:
			line = appendGrow(line, frag[:len(frag)-1])
			return trimCR(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			line = appendGrow(line, frag)
		case errors.Is(err, io.EOF):
			line = appendGrow(line, frag)
			if !read {
				return line, io.EOF
			}

			return trimCR(line), nil
		default:
			return appendGrow(line, frag), err
		}
	}
}

// appendGrow appends data to b, doubling b's capacity until data fits.
func appendGrow(b []byte, data []byte) []byte {
	need := len(b) + len(data)
	if need > cap(b) {
		newCap := cap(b) * 2
		if newCap == 0 {
			newCap = DefaultSize
		}
		for newCap < need {
			newCap *= 2
		}

		grown := make([]byte, len(b), newCap)
		copy(grown, b)
		b = grown
	}

	return append(b, data...)
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}

	return line
}

// Buffer is a reusable line buffer.
//
// It keeps the grown backing array between reads, so reading lines no longer than the
// longest line seen does not allocate. A Buffer is not safe for concurrent use.
type Buffer struct {
	b []byte
}

// NewBuffer creates a Buffer with the given initial capacity.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}

	return &Buffer{b: make([]byte, 0, size)}
}

// ReadLine reads the next line from r, see ReadLine.
//
// The returned slice is valid until the next call to ReadLine or Reset.
func (b *Buffer) ReadLine(r *bufio.Reader) ([]byte, error) {
	line, err := ReadLine(r, b.b)
	b.b = line

	return line, err
}

// Bytes returns the content of the last line read.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the logical length of the last line read.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Cap returns the current capacity of the buffer.
func (b *Buffer) Cap() int {
	return cap(b.b)
}

// Reset empties the buffer but keeps its capacity.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
}
