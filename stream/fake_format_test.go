package stream

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/linebuf"
)

// lineFormat is a minimal text format used to exercise the engine:
//
//	#lines time v(a) i(b)
//	@ 27          starts a table with one sweep value (optional)
//	0 1 2         row
type lineFormat struct {
	name     string
	released *int
}

func (f lineFormat) Name() string        { return f.name }
func (f lineFormat) Description() string { return "engine test lines" }

func (f lineFormat) Detect(head []byte) bool {
	return bytes.HasPrefix(head, []byte("#"+f.name))
}

func (f lineFormat) NewReader(in *Input) (RowReader, Header, error) {
	line, err := in.ReadLine()
	if err != nil {
		return nil, Header{}, err
	}

	fields := strings.Fields(string(line))
	if len(fields) < 2 {
		return nil, Header{}, fmt.Errorf("%w: no variables", errs.ErrInconsistentHeader)
	}

	h := Header{IVar: Var{Name: fields[1], Type: format.TypeFromName(fields[1]), NCols: 1}}
	sweeps := false
	for _, name := range fields[2:] {
		switch {
		case name == "@sweep":
			sweeps = true
		case name == "@wide":
			// declares a column nobody covers
			h.NCols++
		default:
			h.DVars = append(h.DVars, Var{Name: name, Type: format.TypeFromName(name)})
		}
	}
	h.NCols += SequentialColumns(h.DVars)
	if sweeps {
		h.Sweeps = []Var{{Name: "temp", Col: 0}}
	}

	return &lineReader{in: in, ncols: len(h.DVars), sweeps: sweeps, released: f.released}, h, nil
}

type lineReader struct {
	in       *Input
	ncols    int
	sweeps   bool
	started  bool
	fields   [][]byte
	released *int
}

func (r *lineReader) ReadSweep(spar []float64) error {
	line, err := r.in.ReadLine()
	if err != nil {
		return err
	}

	if !bytes.HasPrefix(line, []byte("@")) {
		if r.started {
			return fmt.Errorf("%w: expected table start", errs.ErrMalformedRow)
		}
		r.started = true

		return r.in.Unread(line)
	}
	r.started = true

	if r.sweeps {
		v, err := linebuf.ParseFloat(linebuf.TrimSpace(line[1:]))
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrMalformedRow, err)
		}
		spar[0] = v
	}

	return nil
}

func (r *lineReader) ReadRow(dvals []float64) (float64, error) {
	line, err := r.in.ReadLine()
	if err != nil {
		return 0, err
	}

	if bytes.HasPrefix(line, []byte("@")) {
		if err := r.in.Unread(line); err != nil {
			return 0, err
		}

		return 0, ErrEndOfTable
	}

	r.fields = linebuf.Fields(line, r.fields[:0])
	if len(r.fields) != r.ncols+1 {
		return 0, fmt.Errorf("%w: %d fields", errs.ErrMalformedRow, len(r.fields))
	}

	ivar, err := linebuf.ParseFloat(r.fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrMalformedRow, err)
	}
	for i, f := range r.fields[1:] {
		if dvals[i], err = linebuf.ParseFloat(f); err != nil {
			return 0, fmt.Errorf("%w: %w", errs.ErrMalformedRow, err)
		}
	}

	return ivar, nil
}

func (r *lineReader) Release() {
	if r.released != nil {
		*r.released++
	}
}

// trackingCloser records Close calls on an in-memory source.
type trackingCloser struct {
	io.Reader
	closed int
}

func (c *trackingCloser) Close() error {
	c.closed++
	return nil
}

var testReleases int

func init() {
	Register(lineFormat{name: "lines", released: &testReleases})
}
