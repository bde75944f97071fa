// Package spice3 reads Berkeley Spice3 raw files as written by spice3, ngspice and
// compatible simulators.
//
// A raw file holds one or more plots. Each plot starts with a text header listing the
// variables and is followed by its points, either as text after a "Values:" line or as
// native float64 records after a "Binary:" line:
//
//	Title: * inverter
//	Date: Tue Oct 13 10:12:01  2026
//	Plotname: Transient Analysis
//	Flags: real
//	No. Variables: 3
//	No. Points: 2
//	Variables:
//		0	time	time
//		1	v(out)	voltage
//		2	i(vdd)	current
//	Values:
//	 0	0.000000000000000e+00
//		0.000000000000000e+00
//		0.000000000000000e+00
//	 1	1.000000000000000e-09
//		3.300000000000000e+00
//		-1.000000000000000e-04
//
// Complex plots ("Flags: complex") store every value as a real and imaginary part; the
// dependent variables then span two columns and the independent value is the real part.
// The plots of a file are read as successive tables and must have the same number of
// variables.
//
// Text values that do not parse are read as zero with a WARN diagnostic. Binary records
// are decoded in the byte order given by stream.WithByteOrder, little-endian by default.
//
// Importing the package registers the format under the name "spice3".
package spice3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/linebuf"
	"github.com/arloliu/spicestream/stream"
)

// Name is the registry name of the format.
const Name = "spice3"

// maxPrealloc bounds the variable list capacity reserved from a header count.
const maxPrealloc = 1024

var (
	titleKey    = []byte("title:")
	plotnameKey = []byte("plotname:")
	nvarsKey    = []byte("no. variables:")
)

// Format is the Spice3 raw file format.
type Format struct{}

var _ stream.Format = Format{}

func init() {
	stream.Register(Format{})
}

func (Format) Name() string { return Name }

func (Format) Description() string { return "Spice3 raw file" }

// Detect reports whether head starts with a "Title:" line or carries the "Plotname:"
// and "No. Variables:" header keys.
func (Format) Detect(head []byte) bool {
	if hasPrefixFold(bytes.TrimLeft(head, " \t\r\n"), titleKey) {
		return true
	}

	lower := bytes.ToLower(head)

	return bytes.Contains(lower, plotnameKey) && bytes.Contains(lower, nvarsKey)
}

func (Format) NewReader(in *stream.Input) (stream.RowReader, stream.Header, error) {
	r := &reader{in: in}

	p, err := r.parsePlot()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: empty file", errs.ErrInconsistentHeader)
		}

		return nil, stream.Header{}, err
	}
	r.start(p)

	return r, p.header(), nil
}

func hasPrefixFold(b, prefix []byte) bool {
	return len(b) >= len(prefix) && bytes.EqualFold(b[:len(prefix)], prefix)
}

// isPlotStart reports whether line opens the header of a plot.
func isPlotStart(line []byte) bool {
	line = linebuf.TrimSpace(line)

	return hasPrefixFold(line, titleKey) || hasPrefixFold(line, plotnameKey)
}

// plot is the parsed header of one plot.
type plot struct {
	title   string
	date    string
	name    string
	complex bool
	binary  bool
	nvars   int
	npoints int // -1 when not declared
	vars    []stream.Var
}

func (p *plot) header() stream.Header {
	h := stream.Header{IVar: p.vars[0]}
	h.DVars = make([]stream.Var, len(p.vars)-1)
	copy(h.DVars, p.vars[1:])

	if p.complex {
		for i := range h.DVars {
			h.DVars[i].NCols = 2
		}
	}
	h.NCols = stream.SequentialColumns(h.DVars)

	return h
}

// parsePlot reads a plot header up to and including its "Values:" or "Binary:" line.
//
// Returns io.EOF if the data ends before any header line.
func (r *reader) parsePlot() (*plot, error) {
	p := &plot{nvars: -1, npoints: -1}
	seen := false

	for {
		line, err := r.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && seen {
				return nil, fmt.Errorf("%w: header ends before the data", errs.ErrInconsistentHeader)
			}

			return nil, err
		}
		if linebuf.IsBlank(line) {
			continue
		}
		seen = true

		key, val, found := bytes.Cut(line, []byte(":"))
		if !found {
			return nil, fmt.Errorf("%w: unexpected header line %q", errs.ErrInconsistentHeader, line)
		}
		val = linebuf.TrimSpace(val)

		switch strings.ToLower(string(linebuf.TrimSpace(key))) {
		case "title":
			p.title = string(val)
		case "date":
			p.date = string(val)
		case "plotname":
			p.name = string(val)
		case "flags":
			r.fields = linebuf.Fields(val, r.fields[:0])
			for _, f := range r.fields {
				if bytes.EqualFold(f, []byte("complex")) {
					p.complex = true
				}
			}
		case "no. variables":
			n, err := linebuf.ParseInt(val)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: bad variable count %q", errs.ErrInconsistentHeader, val)
			}
			p.nvars = int(n)
		case "no. points":
			n, err := linebuf.ParseInt(val)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad point count %q", errs.ErrInconsistentHeader, val)
			}
			p.npoints = int(n)
		case "variables":
			if err := r.parseVariables(p, val); err != nil {
				return nil, err
			}
		case "values", "binary":
			p.binary = bytes.EqualFold(linebuf.TrimSpace(key), []byte("binary"))
			if len(p.vars) == 0 {
				return nil, fmt.Errorf("%w: no variables before the data", errs.ErrInconsistentHeader)
			}
			if len(p.vars) != p.nvars {
				return nil, fmt.Errorf("%w: %d variables listed, %d declared",
					errs.ErrInconsistentHeader, len(p.vars), p.nvars)
			}

			return p, nil
		default:
			r.in.Msg(diag.LevelDebug, "ignoring header line %q", line)
		}
	}
}

func (r *reader) parseVariables(p *plot, first []byte) error {
	if p.nvars < 1 {
		return fmt.Errorf("%w: variable list before \"No. Variables\"", errs.ErrInconsistentHeader)
	}

	// the declared count is untrusted, grow with the list
	p.vars = make([]stream.Var, 0, min(p.nvars, maxPrealloc))
	line := first
	for len(p.vars) < p.nvars {
		if linebuf.IsBlank(line) {
			var err error
			if line, err = r.in.ReadLine(); err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("%w: %d of %d variables listed",
						errs.ErrInconsistentHeader, len(p.vars), p.nvars)
				}

				return err
			}

			continue
		}

		r.fields = linebuf.Fields(line, r.fields[:0])
		if len(r.fields) < 3 {
			return fmt.Errorf("%w: bad variable line %q", errs.ErrInconsistentHeader, line)
		}
		if idx, err := linebuf.ParseInt(r.fields[0]); err != nil || int(idx) != len(p.vars) {
			r.in.Warnf("variable %q listed with index %q, expected %d", r.fields[1], r.fields[0], len(p.vars))
		}

		name := string(r.fields[1])
		typ := format.ParseVarType(string(r.fields[2]))
		if typ == format.Unknown {
			typ = format.TypeFromName(name)
		}
		p.vars = append(p.vars, stream.Var{Name: name, Type: typ, NCols: 1})
		line = nil
	}

	return nil
}
