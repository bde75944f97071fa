package spice3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/endian"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/linebuf"
	"github.com/arloliu/spicestream/stream"
)

// errNextPlot reports that a plot header was found where a point was expected.
var errNextPlot = errors.New("next plot")

type reader struct {
	in    *stream.Input
	first *plot
	cur   *plot
	point int

	// between is set once the current plot is exhausted and another header follows.
	between bool
	done    bool

	fields [][]byte
	tokens [][]byte
	pos    int
	rec    []byte
}

var _ stream.RowReader = (*reader)(nil)

func (r *reader) start(p *plot) {
	if r.first == nil {
		r.first = p
	}
	r.cur = p
	r.point = 0
	r.between = false
	r.tokens = r.tokens[:0]
	r.pos = 0

	if p.binary {
		width := 8
		if p.complex {
			width = 16
		}
		if n := len(p.vars) * width; cap(r.rec) < n {
			r.rec = make([]byte, n)
		} else {
			r.rec = r.rec[:n]
		}
	}

	r.in.Msg(diag.LevelInfo, "plot %q (%s, %s): %d variables, %d points", p.name, p.title, p.date, p.nvars, p.npoints)
}

// nextPlot parses the header of the following plot.
func (r *reader) nextPlot() error {
	p, err := r.parsePlot()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.done = true
		}

		return err
	}

	if p.nvars != r.first.nvars || p.complex != r.first.complex {
		return fmt.Errorf("%w: plot %q has %d variables (complex %t), first plot %d (complex %t)",
			errs.ErrInconsistentHeader, p.name, p.nvars, p.complex, r.first.nvars, r.first.complex)
	}
	for i, v := range p.vars {
		if v.Name != r.first.vars[i].Name {
			r.in.Warnf("plot %q: variable %d is %q, first plot has %q", p.name, i, v.Name, r.first.vars[i].Name)
		}
	}
	r.start(p)

	return nil
}

func (r *reader) ReadSweep(_ []float64) error {
	switch {
	case r.done:
		return io.EOF
	case r.between:
		return r.nextPlot()
	default:
		return nil
	}
}

func (r *reader) ReadRow(dvals []float64) (float64, error) {
	if r.done {
		return 0, io.EOF
	}
	if r.between {
		if err := r.nextPlot(); err != nil {
			return 0, err
		}
	}

	if r.cur.npoints >= 0 && r.point == r.cur.npoints {
		return 0, r.finishPlot()
	}

	var ivar float64
	var err error
	if r.cur.binary {
		ivar, err = r.readBinary(dvals)
	} else {
		ivar, err = r.readValues(dvals)
	}

	switch {
	case err == nil:
		r.point++
		return ivar, nil
	case errors.Is(err, errNextPlot):
		r.between = true
		return 0, stream.ErrEndOfTable
	case errors.Is(err, io.EOF):
		r.done = true
		if r.cur.npoints >= 0 {
			return 0, fmt.Errorf("%w: plot %q ends after %d of %d points",
				errs.ErrTruncatedFile, r.cur.name, r.point, r.cur.npoints)
		}

		return 0, io.EOF
	default:
		return 0, err
	}
}

// finishPlot looks past the declared points of the current plot.
//
// Returns ErrEndOfTable if another plot follows, io.EOF at the end of data.
func (r *reader) finishPlot() error {
	skipped := 0
	for {
		line, err := r.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
			}

			return err
		}
		if linebuf.IsBlank(line) {
			continue
		}

		if isPlotStart(line) {
			if skipped > 0 {
				r.in.Warnf("ignored %d lines after the %d declared points", skipped, r.cur.npoints)
			}
			r.between = true
			if err := r.in.Unread(line); err != nil {
				return err
			}

			return stream.ErrEndOfTable
		}
		skipped++
	}
}

// readBinary decodes one native float64 record.
func (r *reader) readBinary(dvals []float64) (float64, error) {
	if err := r.in.ReadFull(r.rec); err != nil {
		if errors.Is(err, io.EOF) && r.cur.npoints >= 0 {
			return 0, fmt.Errorf("%w: plot %q ends after %d of %d points",
				errs.ErrTruncatedFile, r.cur.name, r.point, r.cur.npoints)
		}

		return 0, err
	}

	engine := r.in.ByteOrder()
	if !r.cur.complex {
		for i := range dvals[:r.cur.nvars-1] {
			dvals[i] = endian.Float64(engine, r.rec[(i+1)*8:])
		}

		return endian.Float64(engine, r.rec), nil
	}

	for i := range (r.cur.nvars - 1) * 2 {
		dvals[i] = endian.Float64(engine, r.rec[16+i*8:])
	}

	return endian.Float64(engine, r.rec), nil
}

// readValues parses one text point: the point index followed by one value per
// variable, spread over any number of lines.
func (r *reader) readValues(dvals []float64) (float64, error) {
	tok, err := r.token(true)
	if err != nil {
		return 0, err
	}
	if idx, err := linebuf.ParseInt(tok); err != nil || int(idx) != r.point {
		r.in.Warnf("point index %q, expected %d", tok, r.point)
	}

	var ivar float64
	for v := range r.cur.nvars {
		tok, err := r.token(false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w: point %d ends after %d of %d values",
					errs.ErrTruncatedFile, r.point, v, r.cur.nvars)
			}

			return 0, err
		}

		if v == 0 {
			re, _ := r.value(tok, 0)
			ivar = re

			continue
		}

		re, im := r.value(tok, v)
		if !r.cur.complex {
			dvals[v-1] = re
			continue
		}
		dvals[2*(v-1)] = re
		dvals[2*(v-1)+1] = im
	}

	return ivar, nil
}

// value parses a real "x" or complex "re,im" value. Unparsable parts are zero.
func (r *reader) value(tok []byte, v int) (float64, float64) {
	reTok, imTok, isComplex := bytes.Cut(tok, []byte(","))
	if isComplex != r.cur.complex {
		r.in.Warnf("point %d: value %q of %s has the wrong shape, set to zero", r.point, tok, r.cur.vars[v].Name)
		return 0, 0
	}

	re, err := linebuf.ParseFloat(reTok)
	if err != nil {
		r.in.Warnf("point %d: bad value %q for %s, set to zero", r.point, tok, r.cur.vars[v].Name)
		return 0, 0
	}
	if !isComplex {
		return re, 0
	}

	im, err := linebuf.ParseFloat(imTok)
	if err != nil {
		r.in.Warnf("point %d: bad value %q for %s, set to zero", r.point, tok, r.cur.vars[v].Name)
		return 0, 0
	}

	return re, im
}

// token returns the next whitespace-separated token of the text values.
//
// At the start of a point a plot header line yields errNextPlot; the line is pushed
// back for the next header parse.
func (r *reader) token(pointStart bool) ([]byte, error) {
	for r.pos >= len(r.tokens) {
		line, err := r.in.ReadLine()
		if err != nil {
			return nil, err
		}
		if linebuf.IsBlank(line) {
			continue
		}
		if pointStart && isPlotStart(line) {
			if err := r.in.Unread(line); err != nil {
				return nil, err
			}

			return nil, errNextPlot
		}

		r.tokens = linebuf.Fields(line, r.tokens[:0])
		r.pos = 0
	}

	tok := r.tokens[r.pos]
	r.pos++

	return tok, nil
}
