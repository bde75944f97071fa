package stream

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/spicestream/errs"
)

// ErrEndOfTable is returned by ReadRow when the current table has no more rows. It is
// returned for the last table too; once the data is exhausted, further reads report
// io.EOF.
var ErrEndOfTable = errors.New("end of table")

// RowReader reads the data of one format. It is bound to a stream when the stream is
// opened and never changes afterwards.
//
// Implementations may also implement interface{ Release() } to return private buffers
// when the stream is closed.
type RowReader interface {
	// ReadRow reads the next row of the current table.
	//
	// The independent variable value is returned; the dependent values are written to
	// dvals, positioned by each dependent variable's column range. dvals holds at
	// least Header.NCols values.
	//
	// Returns ErrEndOfTable at a boundary between two tables and io.EOF at the end of
	// data. The stream turns the io.EOF that ends a table into ErrEndOfTable, so
	// readers need not track whether a table is open.
	ReadRow(dvals []float64) (float64, error)

	// ReadSweep reads the sweep parameter values of the next table into spar, which
	// holds at least len(Header.Sweeps) values. It is called once per table before the
	// first ReadRow of that table.
	//
	// Returns io.EOF when no further table exists. Formats without sweep parameters
	// return nil for the first table.
	ReadSweep(spar []float64) error
}

// Format is a pluggable result file format.
type Format interface {
	// Name returns the registry name, e.g. "spice3".
	Name() string

	// Description returns a human-readable name of the format.
	Description() string

	// Detect reports whether head, the leading bytes of a file, looks like this format.
	// head may be shorter than the configured sniff size for small files.
	Detect(head []byte) bool

	// NewReader parses the file header from in and returns the bound row reader and
	// the variable catalog.
	NewReader(in *Input) (RowReader, Header, error)
}

var registry = struct {
	mu      sync.RWMutex
	formats []Format
	byName  map[string]Format
}{byName: make(map[string]Format)}

// Register makes a format available to Open.
//
// Formats are tried for detection in registration order. Register panics if f is nil
// or a format with the same name (case-insensitive) is already registered.
func Register(f Format) {
	if f == nil {
		panic("stream: Register format is nil")
	}

	key := strings.ToLower(f.Name())

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, dup := registry.byName[key]; dup {
		panic("stream: Register called twice for format " + f.Name())
	}
	registry.byName[key] = f
	registry.formats = append(registry.formats, f)
}

// Lookup returns the registered format with the given name, case-insensitive.
func Lookup(name string) (Format, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	f, ok := registry.byName[strings.ToLower(name)]

	return f, ok
}

// Formats returns the registered formats in registration order.
func Formats() []Format {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return slices.Clone(registry.formats)
}

// FormatDescription returns the description of a registered format, or "unknown".
func FormatDescription(name string) string {
	if f, ok := Lookup(name); ok {
		return f.Description()
	}

	return "unknown"
}

// detect returns the first registered format claiming head.
func detect(head []byte) (Format, error) {
	for _, f := range Formats() {
		if f.Detect(head) {
			return f, nil
		}
	}

	return nil, fmt.Errorf("%w: no registered format claims the file", errs.ErrUnrecognizedFormat)
}

func lookupOrErr(name string) (Format, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown format %q", errs.ErrUnrecognizedFormat, name)
	}

	return f, nil
}
