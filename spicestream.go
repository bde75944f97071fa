// Package spicestream reads analog simulation result files produced by SPICE-like
// circuit simulators.
//
// A result file holds one or more tables. Each table has an independent variable
// (usually time or frequency), a set of dependent variables (voltages, currents) and,
// for parametric sweeps, the sweep parameter values it was computed for. Whatever the
// on-disk layout, a file is read through one uniform Stream.
//
// # Core Features
//
//   - Format detection from the leading bytes of a file
//   - Plain column text, Spice3 raw (text and binary, real and complex) and quantized
//     sparse Nanosim-style output
//   - Transparent decompression of gzip, zstd, S2 and LZ4 compressed files
//   - Allocation-free row reading into caller buffers
//   - Leveled diagnostics through go-kit/log or a caller hook
//
// # Basic Usage
//
//	s, err := spicestream.Open("tran.raw")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	spar := make([]float64, len(s.Sweeps()))
//	dvals := make([]float64, s.NumCols())
//	for s.ReadSweep(spar) == nil {
//	    for t, row := range s.Rows(dvals) {
//	        fmt.Println(t, row)
//	    }
//	    if err := s.Err(); err != nil {
//	        return err
//	    }
//	}
//
// # Package Structure
//
// This package registers the built-in formats and wraps the stream package. Custom
// formats implement stream.Format and are added with stream.Register.
package spicestream

import (
	"io"

	"github.com/arloliu/spicestream/stream"

	// built-in formats
	_ "github.com/arloliu/spicestream/formats/ascii"
	_ "github.com/arloliu/spicestream/formats/nsout"
	_ "github.com/arloliu/spicestream/formats/spice3"
)

// Open opens the result file at path with any registered format.
//
// See stream.Open for the options and errors.
func Open(path string, opts ...stream.Option) (*stream.Stream, error) {
	return stream.Open(path, opts...)
}

// OpenReader opens a result stream read from r. The caller keeps ownership of r.
//
// See stream.OpenReader for the options and errors.
func OpenReader(r io.Reader, name string, opts ...stream.Option) (*stream.Stream, error) {
	return stream.OpenReader(r, name, opts...)
}

// Formats returns the names of the registered formats in detection order.
func Formats() []string {
	formats := stream.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name()
	}

	return names
}

// FormatDescription returns the human-readable name of a registered format, or
// "unknown".
func FormatDescription(name string) string {
	return stream.FormatDescription(name)
}
