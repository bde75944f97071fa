package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/endian"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/internal/pool"
	"github.com/arloliu/spicestream/linebuf"
)

// Counters are the monotonic read positions of a stream.
type Counters struct {
	Lines     int64 // physical text lines read
	Rows      int64 // data rows delivered
	Tables    int64 // tables completed
	SweepSets int64 // sweep parameter sets delivered
}

// Input is the engine-owned decode state a format reader works on.
//
// It wraps the buffered source with a reusable line buffer, a one-line pushback slot,
// the declared byte order, the read counters and the diagnostics sink. An Input belongs
// to exactly one stream and is not safe for concurrent use.
type Input struct {
	name   string
	id     string
	br     *bufio.Reader
	line   *linebuf.Buffer
	engine endian.EndianEngine
	sink   *diag.Sink

	// pending holds a pushed-back line in its own storage, so a later ReadLine into
	// line cannot overwrite it.
	pending    []byte
	hasPending bool

	counters Counters
}

func newInput(name string, br *bufio.Reader, lineSize int, engine endian.EndianEngine, sink *diag.Sink) *Input {
	line := pool.GetLineBuffer()
	if lineSize > line.Cap() {
		pool.PutLineBuffer(line)
		line = linebuf.NewBuffer(lineSize)
	}

	return &Input{
		name:   name,
		br:     br,
		line:   line,
		engine: engine,
		sink:   sink,
	}
}

// Name returns the source name used in diagnostics.
func (in *Input) Name() string {
	return in.name
}

// Reader returns the buffered source for binary formats.
//
// Binary reads bypass the pushback slot; formats must not mix Unread with direct reads.
func (in *Input) Reader() *bufio.Reader {
	return in.br
}

// ByteOrder returns the byte order binary values are declared in.
func (in *Input) ByteOrder() endian.EndianEngine {
	return in.engine
}

// SetByteOrder overrides the byte order, for formats that declare it in their header.
func (in *Input) SetByteOrder(engine endian.EndianEngine) {
	in.engine = engine
}

// Swapped reports whether the declared byte order differs from the host's, which means
// multi-byte values are reversed while decoding.
func (in *Input) Swapped() bool {
	return endian.NeedsSwap(in.engine)
}

// ReadLine returns the next logical line without its terminator.
//
// A pushed-back line is delivered first. The returned slice is valid until the next
// call to ReadLine or Unread.
//
// Returns:
//   - []byte: The line
//   - error: io.EOF at end of data, or an ErrIO wrapped read failure
func (in *Input) ReadLine() ([]byte, error) {
	if in.hasPending {
		in.hasPending = false
		return in.pending, nil
	}

	line, err := in.line.ReadLine(in.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, in.ioError(err)
	}
	in.counters.Lines++

	return line, nil
}

// Unread pushes line back so the next ReadLine returns it again. At most one line can
// be pending.
//
// Returns:
//   - error: ErrPushbackFull if a line is already pending
func (in *Input) Unread(line []byte) error {
	if in.hasPending {
		return errs.ErrPushbackFull
	}

	in.pending = append(in.pending[:0], line...)
	in.hasPending = true

	return nil
}

// HasPending reports whether a pushed-back line is waiting.
func (in *Input) HasPending() bool {
	return in.hasPending
}

// Peek returns the next n bytes of the source without consuming them.
// Fewer bytes are returned together with io.EOF near the end of data.
func (in *Input) Peek(n int) ([]byte, error) {
	head, err := in.br.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return head, in.ioError(err)
	}

	return head, err
}

// ReadFull reads exactly len(p) bytes.
//
// Returns:
//   - error: io.EOF if no byte was available, ErrTruncatedFile if the data ended
//     inside p, or an ErrIO wrapped read failure
func (in *Input) ReadFull(p []byte) error {
	n, err := io.ReadFull(in.br, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && n == 0:
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %s: %d of %d bytes", errs.ErrTruncatedFile, in.name, n, len(p))
	default:
		return in.ioError(err)
	}
}

func (in *Input) ioError(err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrIO, in.name, err)
}

// Msg emits a diagnostic tagged with the format name, source name and current line.
func (in *Input) Msg(l diag.Level, format string, args ...any) {
	if !in.sink.Enabled(l) {
		return
	}

	in.sink.With("source", in.name, "line", in.counters.Lines).Msg(l, in.id, format, args...)
}

// Warnf emits a WARN diagnostic, see Msg.
func (in *Input) Warnf(format string, args ...any) {
	in.Msg(diag.LevelWarn, format, args...)
}

// Sink returns the diagnostics sink of the stream.
func (in *Input) Sink() *diag.Sink {
	return in.sink
}

// CountRow records a delivered row.
func (in *Input) CountRow() {
	in.counters.Rows++
}

// CountTable records a completed table.
func (in *Input) CountTable() {
	in.counters.Tables++
}

// CountSweep records a delivered sweep parameter set.
func (in *Input) CountSweep() {
	in.counters.SweepSets++
}

// Counters returns a snapshot of the read counters.
func (in *Input) Counters() Counters {
	return in.counters
}

func (in *Input) release() {
	pool.PutLineBuffer(in.line)
	in.line = nil
	in.pending = nil
	in.hasPending = false
}
