package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/internal/collision"
	"github.com/arloliu/spicestream/internal/hash"
)

// Stream is an open simulation result file.
//
// A Stream reads one table after another. For each table the caller calls ReadSweep
// once, then ReadRow until it returns ErrEndOfTable; io.EOF from either reports that
// no data is left:
//
//	for {
//	    if err := s.ReadSweep(spar); err == io.EOF {
//	        break
//	    }
//	    for {
//	        ivar, err := s.ReadRow(dvals)
//	        if err == stream.ErrEndOfTable {
//	            break
//	        }
//	        ...
//	    }
//	}
//
// A Stream is not safe for concurrent use. Close must be called exactly once; using the
// Stream after Close is a caller error.
type Stream struct {
	name        string
	format      Format
	header      Header
	reader      RowReader
	in          *Input
	compression format.CompressionType

	index map[uint64][]varRef

	closers []io.Closer

	inTable bool
	done    bool
	err     error
}

type varRef struct {
	cat Category
	pos int
}

var _ io.Closer = (*Stream)(nil)

func newStream(name string, f Format, h Header, r RowReader, in *Input) *Stream {
	s := &Stream{
		name:   name,
		format: f,
		header: h,
		reader: r,
		in:     in,
		index:  make(map[uint64][]varRef, 1+len(h.DVars)+len(h.Sweeps)),
	}

	tracker := collision.NewTracker()
	s.addIndex(tracker, h.IVar.Name, Independent, 0)

	tracker.Reset()
	for i, v := range h.DVars {
		s.addIndex(tracker, v.Name, Dependent, i)
	}
	s.noteCollisions(tracker, Dependent)

	tracker.Reset()
	for i, v := range h.Sweeps {
		s.addIndex(tracker, v.Name, Sweep, i)
	}
	s.noteCollisions(tracker, Sweep)

	return s
}

// addIndex indexes a variable for Lookup. Names must be unique within a category.
func (s *Stream) addIndex(tracker *collision.Tracker, name string, cat Category, pos int) {
	id := hash.NameID(name)
	if tracker.Track(name, id) {
		s.in.Warnf("duplicate %s variable %q, lookups return the first", cat, name)
	}
	s.index[id] = append(s.index[id], varRef{cat: cat, pos: pos})
}

// noteCollisions traces name hash collisions; Lookup resolves them by comparing names.
func (s *Stream) noteCollisions(tracker *collision.Tracker, cat Category) {
	if tracker.HasCollision() {
		s.in.Msg(diag.LevelDebug, "hash collision among %d %s variable names", tracker.Count(), cat)
	}
}

// Name returns the source name of the stream.
func (s *Stream) Name() string {
	return s.name
}

// FormatName returns the name of the format reading the stream.
func (s *Stream) FormatName() string {
	return s.format.Name()
}

// FormatDescription returns the human-readable name of the stream's format.
func (s *Stream) FormatDescription() string {
	return s.format.Description()
}

// Compression returns the compression the source was stored with.
func (s *Stream) Compression() format.CompressionType {
	return s.compression
}

// Header returns a copy of the variable catalog.
func (s *Stream) Header() Header {
	h := s.header
	h.DVars = slices.Clone(h.DVars)
	h.Sweeps = slices.Clone(h.Sweeps)

	return h
}

// IVar returns the independent variable.
func (s *Stream) IVar() Var {
	return s.header.IVar
}

// DVars returns the dependent variables. The slice must not be modified.
func (s *Stream) DVars() []Var {
	return s.header.DVars
}

// Sweeps returns the sweep parameters. The slice must not be modified.
func (s *Stream) Sweeps() []Var {
	return s.header.Sweeps
}

// NumCols returns the number of values ReadRow writes, the minimum length of dvals.
func (s *Stream) NumCols() int {
	return s.header.NCols
}

// NumTables returns the number of tables, or 0 when unknown before reading.
func (s *Stream) NumTables() int {
	return s.header.NTables
}

// Counters returns a snapshot of the read counters.
func (s *Stream) Counters() Counters {
	return s.in.Counters()
}

// Swapped reports whether binary values are byte-swapped while decoding.
func (s *Stream) Swapped() bool {
	return s.in.Swapped()
}

// Lookup returns the variable with the given name, compared case-insensitively.
// The independent variable is searched first, then dependent variables, then sweeps.
func (s *Stream) Lookup(name string) (Var, Category, bool) {
	for _, ref := range s.index[hash.NameID(name)] {
		v := s.varAt(ref)
		if strings.EqualFold(v.Name, name) {
			return v, ref.cat, true
		}
	}

	return Var{}, 0, false
}

func (s *Stream) varAt(ref varRef) Var {
	switch ref.cat {
	case Independent:
		return s.header.IVar
	case Dependent:
		return s.header.DVars[ref.pos]
	default:
		return s.header.Sweeps[ref.pos]
	}
}

// VarName returns the display name of a column.
//
// For Dependent, col is a column of the row buffer and complex columns carry a part
// suffix (see Var.ColumnName). For Sweep, col is a position in the sweep buffer.
// Independent ignores col.
//
// Returns "" if col is out of range.
func (s *Stream) VarName(cat Category, col int) string {
	switch cat {
	case Independent:
		return s.header.IVar.Name
	case Dependent:
		for _, v := range s.header.DVars {
			if v.Covers(col) {
				return v.ColumnName(col - v.Col)
			}
		}
	case Sweep:
		if col >= 0 && col < len(s.header.Sweeps) {
			return s.header.Sweeps[col].Name
		}
	}

	return ""
}

// ReadRow reads the next row of the current table.
//
// The independent value is returned and the dependent values are written to dvals.
//
// Parameters:
//   - dvals: Row buffer, at least NumCols values
//
// Returns:
//   - float64: The independent variable value
//   - error: ErrEndOfTable when the table has no more rows, io.EOF when no data is
//     left, ErrShortBuffer if dvals is too small, or a read failure
func (s *Stream) ReadRow(dvals []float64) (float64, error) {
	if len(dvals) < s.header.NCols {
		return 0, fmt.Errorf("%w: row buffer holds %d values, need %d",
			errs.ErrShortBuffer, len(dvals), s.header.NCols)
	}
	if s.done {
		return 0, io.EOF
	}

	ivar, err := s.reader.ReadRow(dvals)
	switch {
	case err == nil:
		s.inTable = true
		s.in.CountRow()

		return ivar, nil
	case errors.Is(err, ErrEndOfTable):
		s.endTable()

		return 0, ErrEndOfTable
	case errors.Is(err, io.EOF):
		if s.inTable {
			s.endTable()

			return 0, ErrEndOfTable
		}
		s.done = true

		return 0, io.EOF
	default:
		s.fail("read row", err)

		return 0, err
	}
}

func (s *Stream) endTable() {
	s.inTable = false
	s.in.CountTable()
}

// ReadSweep reads the sweep parameter values of the next table into spar.
//
// Parameters:
//   - spar: Sweep buffer, at least len(Sweeps) values; may be nil without sweeps
//
// Returns:
//   - error: io.EOF when no further table exists, ErrShortBuffer if spar is too small,
//     or a read failure
func (s *Stream) ReadSweep(spar []float64) error {
	if len(spar) < len(s.header.Sweeps) {
		return fmt.Errorf("%w: sweep buffer holds %d values, need %d",
			errs.ErrShortBuffer, len(spar), len(s.header.Sweeps))
	}
	if s.done {
		return io.EOF
	}

	err := s.reader.ReadSweep(spar)
	switch {
	case err == nil:
		s.inTable = true
		if len(s.header.Sweeps) > 0 {
			s.in.CountSweep()
		}

		return nil
	case errors.Is(err, io.EOF):
		s.done = true

		return io.EOF
	default:
		s.fail("read sweep", err)

		return err
	}
}

// Rows returns an iterator over the remaining rows of the current table.
//
// Every iteration writes the row into dvals and yields the independent value with
// dvals. Iteration stops at the end of the table; Err reports the error that stopped
// it early.
func (s *Stream) Rows(dvals []float64) iter.Seq2[float64, []float64] {
	return func(yield func(float64, []float64) bool) {
		s.err = nil
		for {
			ivar, err := s.ReadRow(dvals)
			if err != nil {
				if !errors.Is(err, ErrEndOfTable) && !errors.Is(err, io.EOF) {
					s.err = err
				}

				return
			}
			if !yield(ivar, dvals) {
				return
			}
		}
	}
}

// Err returns the error that stopped the last Rows iteration, nil at the end of a table
// or of the data.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) fail(op string, err error) {
	s.in.Msg(diag.LevelError, "%s: %v", op, err)
}

// Close releases the source, the decompressor and all buffers of the stream.
//
// Close must be called exactly once.
func (s *Stream) Close() error {
	if r, ok := s.reader.(interface{ Release() }); ok {
		r.Release()
	}
	s.in.release()

	var closeErrs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}

	s.reader = nil
	s.closers = nil
	s.index = nil
	s.header = Header{}

	if err := errors.Join(closeErrs...); err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrIO, s.name, err)
	}

	return nil
}
