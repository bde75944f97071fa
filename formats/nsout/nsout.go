// Package nsout reads quantized sparse text results in the style of Nanosim ".out"
// files.
//
// The header declares the resolutions and maps every signal to a storage index:
//
//	; comment
//	.voltage_resolution 1e-6
//	.current_resolution 1e-9
//	.time_resolution 1e-12
//	.index v(out) 1 v
//	.index i(r1) 2 i
//
// An optional ".max_index" directive declares the size of the index space; without it
// the largest listed index is used. An index beyond the declared space is a header
// error.
//
// The data is a sequence of records. A record holding a single integer starts the row
// at that time, in units of the time resolution. Records of two integers that follow it
// update a storage index with a stored value. Signals not updated keep the value of the
// previous row:
//
//	0
//	1 0
//	2 0
//	1000
//	1 3300
//
// Malformed records are skipped with a WARN diagnostic.
//
// Importing the package registers the format under the name "nsout".
package nsout

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
	"github.com/arloliu/spicestream/quant"
	"github.com/arloliu/spicestream/stream"
)

// Name is the registry name of the format.
const Name = "nsout"

var (
	indexDirective   = []byte(".index ")
	resolutionSuffix = []byte("_resolution")
)

// Format is the quantized sparse text format.
type Format struct{}

var _ stream.Format = Format{}

func init() {
	stream.Register(Format{})
}

func (Format) Name() string { return Name }

func (Format) Description() string { return "Nanosim quantized output" }

// Detect reports whether head carries ".index" and resolution directives.
func (Format) Detect(head []byte) bool {
	return bytes.Contains(head, indexDirective) && bytes.Contains(head, resolutionSuffix)
}

func isComment(line []byte) bool {
	line = linebuf.TrimSpace(line)
	return len(line) == 0 || line[0] == ';'
}

func isDirective(line []byte) bool {
	line = linebuf.TrimSpace(line)
	return len(line) > 0 && line[0] == '.'
}

func (Format) NewReader(in *stream.Input) (stream.RowReader, stream.Header, error) {
	var res quant.Resolution
	var slots []quant.Slot
	var fields [][]byte

	h := stream.Header{
		IVar:    stream.Var{Name: "time", Type: format.Time, NCols: 1},
		NTables: 1,
	}
	maxIndex := -1
	declared := -1

	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, h, err
		}
		if isComment(line) {
			continue
		}
		if !isDirective(line) {
			if err := in.Unread(line); err != nil {
				return nil, h, err
			}

			break
		}

		fields = linebuf.Fields(line, fields[:0])
		switch strings.ToLower(string(fields[0])) {
		case ".voltage_resolution":
			if res.Voltage, err = resolution(fields); err != nil {
				return nil, h, err
			}
		case ".current_resolution":
			if res.Current, err = resolution(fields); err != nil {
				return nil, h, err
			}
		case ".time_resolution":
			if res.Time, err = resolution(fields); err != nil {
				return nil, h, err
			}
		case ".max_index":
			if len(fields) != 2 {
				return nil, h, fmt.Errorf("%w: .max_index takes one value", errs.ErrInconsistentHeader)
			}
			n, err := linebuf.ParseInt(fields[1])
			if err != nil || n < 0 || n > quant.MaxIndex {
				return nil, h, fmt.Errorf("%w: bad .max_index %q", errs.ErrInconsistentHeader, fields[1])
			}
			declared = int(n)
		case ".index":
			if len(fields) != 4 {
				return nil, h, fmt.Errorf("%w: bad index directive %q", errs.ErrInconsistentHeader, line)
			}
			idx, err := linebuf.ParseInt(fields[2])
			if err != nil || idx < 0 || idx > quant.MaxIndex {
				return nil, h, fmt.Errorf("%w: bad storage index %q", errs.ErrInconsistentHeader, fields[2])
			}

			name := string(fields[1])
			typ := format.ParseVarType(string(fields[3]))
			h.DVars = append(h.DVars, stream.Var{Name: name, Type: typ, NCols: 1})
			slots = append(slots, quant.Slot{Index: int(idx), Type: typ})
			maxIndex = max(maxIndex, int(idx))
		default:
			in.Msg(diag.LevelDebug, "ignoring directive %q", fields[0])
		}
	}

	if err := checkResolution(res, slots); err != nil {
		return nil, h, err
	}

	if declared >= 0 {
		maxIndex = declared
	}

	dec := quant.NewDecoder(res)
	if err := dec.Configure(maxIndex, slots); err != nil {
		dec.Release()
		return nil, h, err
	}
	h.NCols = stream.SequentialColumns(h.DVars)

	in.Msg(diag.LevelDebug, "max index %d, resolution v=%g i=%g t=%g", maxIndex, res.Voltage, res.Current, res.Time)

	return &reader{in: in, dec: dec}, h, nil
}

func resolution(fields [][]byte) (float64, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %s takes one value", errs.ErrInconsistentHeader, fields[0])
	}

	v, err := linebuf.ParseFloat(fields[1])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", errs.ErrInconsistentHeader, fields[0], fields[1])
	}

	return v, nil
}

// checkResolution requires a time resolution and one for every type in use.
func checkResolution(res quant.Resolution, slots []quant.Slot) error {
	if res.Time == 0 {
		return fmt.Errorf("%w: missing .time_resolution", errs.ErrInconsistentHeader)
	}

	for _, slot := range slots {
		switch slot.Type { //nolint: exhaustive
		case format.Voltage:
			if res.Voltage == 0 {
				return fmt.Errorf("%w: missing .voltage_resolution", errs.ErrInconsistentHeader)
			}
		case format.Current:
			if res.Current == 0 {
				return fmt.Errorf("%w: missing .current_resolution", errs.ErrInconsistentHeader)
			}
		}
	}

	return nil
}

type reader struct {
	in      *stream.Input
	dec     *quant.Decoder
	started bool
	fields  [][]byte
}

var _ stream.RowReader = (*reader)(nil)

// ReadSweep starts the single table of the file.
func (r *reader) ReadSweep(_ []float64) error {
	if r.started {
		return io.EOF
	}
	r.start()

	return nil
}

func (r *reader) start() {
	r.started = true
	r.dec.Reset()
}

func (r *reader) ReadRow(dvals []float64) (float64, error) {
	if !r.started {
		r.start()
	}

	stored, err := r.nextTime()
	if err != nil {
		return 0, err
	}

	for {
		line, err := r.in.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if isComment(line) {
			continue
		}

		r.fields = linebuf.Fields(line, r.fields[:0])
		if len(r.fields) == 1 {
			// next time point
			if err := r.in.Unread(line); err != nil {
				return 0, err
			}

			break
		}
		r.update()
	}

	r.dec.Fill(dvals)

	return r.dec.Time(stored), nil
}

// nextTime reads up to the next time record, skipping anything else.
func (r *reader) nextTime() (int64, error) {
	for {
		line, err := r.in.ReadLine()
		if err != nil {
			return 0, err
		}
		if isComment(line) {
			continue
		}

		r.fields = linebuf.Fields(line, r.fields[:0])
		if len(r.fields) != 1 {
			r.in.Warnf("record %q outside a time point, skipped", line)
			continue
		}

		stored, err := linebuf.ParseInt(r.fields[0])
		if err != nil {
			r.in.Warnf("bad time record %q, skipped", line)
			continue
		}

		return stored, nil
	}
}

// update applies one "index value" record to the row state.
func (r *reader) update() {
	if len(r.fields) != 2 {
		r.in.Warnf("expected index and value, got %d fields, record skipped", len(r.fields))
		return
	}

	idx, err := linebuf.ParseInt(r.fields[0])
	if err != nil {
		r.in.Warnf("bad index %q, record skipped", r.fields[0])
		return
	}
	stored, err := linebuf.ParseInt(r.fields[1])
	if err != nil {
		r.in.Warnf("bad value %q for index %d, record skipped", r.fields[1], idx)
		return
	}

	if err := r.dec.Set(int(idx), stored); err != nil {
		r.in.Warnf("%v, record skipped", err)
	}
}

// Release returns the row state to the pool.
func (r *reader) Release() {
	r.dec.Release()
}
