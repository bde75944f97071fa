// Package ascii reads plain whitespace-separated column files.
//
// The first non-comment line names the variables, independent variable first. Each
// following line is one row. Parametric sweeps are written as tables introduced by
// "#table" lines carrying the values of the parameters declared by "#sweep":
//
//	# transient of an inverter
//	#sweep temp vdd
//	time v(out) i(vdd)
//	#table 27 3.3
//	0     0.0  0.0
//	1e-9  1.2  -1e-4
//	#table 85 3.3
//	0     0.0  0.0
//
// Lines starting with "#" are comments. Rows with the wrong number of values or values
// that do not parse are skipped with a WARN diagnostic.
//
// Importing the package registers the format under the name "ascii".
package ascii

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/linebuf"
	"github.com/arloliu/spicestream/stream"
)

// Name is the registry name of the format.
const Name = "ascii"

var (
	commentPrefix = []byte("#")
	sweepPrefix   = []byte("#sweep")
	tablePrefix   = []byte("#table")
)

// Format is the plain column text format.
type Format struct{}

var _ stream.Format = Format{}

// hasKeyword reports whether line starts with the directive kw followed by a blank or
// the end of the line.
func hasKeyword(line, kw []byte) bool {
	if !bytes.HasPrefix(line, kw) {
		return false
	}

	return len(line) == len(kw) || linebuf.IsBlank(line[len(kw):len(kw)+1])
}

func init() {
	stream.Register(Format{})
}

func (Format) Name() string { return Name }

func (Format) Description() string { return "ASCII columns" }

// Detect reports whether head starts with a line of variable names followed by a row
// of as many numbers.
func (Format) Detect(head []byte) bool {
	var fields [][]byte
	names := 0

	for len(head) > 0 {
		line, rest, _ := bytes.Cut(head, []byte("\n"))
		head = rest

		if linebuf.IsBlank(line) || bytes.HasPrefix(line, commentPrefix) {
			continue
		}

		fields = linebuf.Fields(line, fields[:0])
		if names == 0 {
			if len(fields) < 2 {
				return false
			}
			for _, f := range fields {
				if _, err := linebuf.ParseFloat(f); err == nil {
					return false
				}
			}
			names = len(fields)

			continue
		}

		if len(fields) != names {
			return false
		}
		for _, f := range fields {
			if _, err := linebuf.ParseFloat(f); err != nil {
				return false
			}
		}

		return true
	}

	return false
}

func (Format) NewReader(in *stream.Input) (stream.RowReader, stream.Header, error) {
	var h stream.Header
	var fields [][]byte

	for {
		line, err := in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, h, fmt.Errorf("%w: no variable names", errs.ErrInconsistentHeader)
			}

			return nil, h, err
		}

		switch {
		case linebuf.IsBlank(line):
			continue
		case hasKeyword(line, sweepPrefix):
			fields = linebuf.Fields(line[len(sweepPrefix):], fields[:0])
			h.Sweeps = h.Sweeps[:0]
			for i, f := range fields {
				name := string(f)
				h.Sweeps = append(h.Sweeps, stream.Var{Name: name, Type: format.TypeFromName(name), Col: i})
			}

			continue
		case bytes.HasPrefix(line, commentPrefix):
			continue
		}

		fields = linebuf.Fields(line, fields[:0])
		if len(fields) < 1 {
			continue
		}

		ivar := string(fields[0])
		h.IVar = stream.Var{Name: ivar, Type: format.TypeFromName(ivar), NCols: 1}
		for _, f := range fields[1:] {
			name := string(f)
			h.DVars = append(h.DVars, stream.Var{Name: name, Type: format.TypeFromName(name)})
		}
		h.NCols = stream.SequentialColumns(h.DVars)

		return &reader{in: in, nvals: 1 + h.NCols, nsweeps: len(h.Sweeps)}, h, nil
	}
}

type reader struct {
	in      *stream.Input
	nvals   int
	nsweeps int
	started bool
	fields  [][]byte
}

// next returns the next line that is neither blank nor a plain comment.
func (r *reader) next() ([]byte, error) {
	for {
		line, err := r.in.ReadLine()
		if err != nil {
			return nil, err
		}
		if linebuf.IsBlank(line) {
			continue
		}
		if bytes.HasPrefix(line, commentPrefix) && !hasKeyword(line, tablePrefix) {
			continue
		}

		return line, nil
	}
}

func (r *reader) ReadSweep(spar []float64) error {
	line, err := r.next()
	if err != nil {
		return err
	}

	if !hasKeyword(line, tablePrefix) {
		// first table of a file without "#table" lines
		if r.started {
			return fmt.Errorf("%w: expected #table line", errs.ErrMalformedRow)
		}
		r.started = true
		if r.nsweeps > 0 {
			r.in.Warnf("no #table line before the first row, sweep values set to zero")
			clear(spar[:r.nsweeps])
		}

		return r.in.Unread(line)
	}
	r.started = true

	r.fields = linebuf.Fields(line[len(tablePrefix):], r.fields[:0])
	if len(r.fields) != r.nsweeps {
		return fmt.Errorf("%w: #table has %d values, expected %d", errs.ErrMalformedRow, len(r.fields), r.nsweeps)
	}
	for i, f := range r.fields {
		v, err := linebuf.ParseFloat(f)
		if err != nil {
			return fmt.Errorf("%w: sweep value %q: %w", errs.ErrMalformedRow, f, err)
		}
		spar[i] = v
	}

	return nil
}

func (r *reader) ReadRow(dvals []float64) (float64, error) {
	for {
		line, err := r.next()
		if err != nil {
			return 0, err
		}
		r.started = true

		if hasKeyword(line, tablePrefix) {
			if err := r.in.Unread(line); err != nil {
				return 0, err
			}

			return 0, stream.ErrEndOfTable
		}

		r.fields = linebuf.Fields(line, r.fields[:0])
		if len(r.fields) != r.nvals {
			r.in.Warnf("expected %d values, got %d, row skipped", r.nvals, len(r.fields))
			continue
		}

		ivar, ok := r.parse(dvals)
		if !ok {
			continue
		}

		return ivar, nil
	}
}

func (r *reader) parse(dvals []float64) (float64, bool) {
	ivar, err := linebuf.ParseFloat(r.fields[0])
	if err != nil {
		r.in.Warnf("bad value %q in column 0, row skipped", r.fields[0])
		return 0, false
	}

	for i, f := range r.fields[1:] {
		v, err := linebuf.ParseFloat(f)
		if err != nil {
			r.in.Warnf("bad value %q in column %d, row skipped", f, i+1)
			return 0, false
		}
		dvals[i] = v
	}

	return ivar, true
}
