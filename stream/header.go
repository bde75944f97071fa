package stream

import (
	"fmt"

	"github.com/arloliu/spicestream/errs"
)

// Header is the variable catalog a format reports after parsing a file header.
type Header struct {
	IVar   Var   // independent variable
	DVars  []Var // dependent variables
	Sweeps []Var // sweep parameters, NCols 0 each

	// NCols is the declared number of values a row holds, excluding the independent
	// variable. It must equal the sum of the dependent variables' NCols.
	NCols int

	// NTables is the number of tables in the file, 0 when the format cannot tell
	// without reading all of it.
	NTables int
}

// Validate checks that the catalog reconciles.
//
// The independent variable must have one column, every dependent variable at least one,
// and the dependent column ranges must be disjoint and cover [0, NCols) exactly. Sweep
// parameters must have no columns.
//
// Returns:
//   - error: ErrInconsistentHeader describing the first violation
func (h *Header) Validate() error {
	if h.IVar.NCols != 1 {
		return fmt.Errorf("%w: independent variable %q has %d columns",
			errs.ErrInconsistentHeader, h.IVar.Name, h.IVar.NCols)
	}

	if h.NCols < 0 {
		return fmt.Errorf("%w: negative column count %d", errs.ErrInconsistentHeader, h.NCols)
	}

	covered := make([]bool, h.NCols)
	sum := 0
	for i, v := range h.DVars {
		if v.NCols < 1 {
			return fmt.Errorf("%w: dependent variable %d (%q) has %d columns",
				errs.ErrInconsistentHeader, i, v.Name, v.NCols)
		}
		if v.Col < 0 || v.Col+v.NCols > h.NCols {
			return fmt.Errorf("%w: dependent variable %d (%q) columns [%d,%d) outside [0,%d)",
				errs.ErrInconsistentHeader, i, v.Name, v.Col, v.Col+v.NCols, h.NCols)
		}

		for c := v.Col; c < v.Col+v.NCols; c++ {
			if covered[c] {
				return fmt.Errorf("%w: column %d claimed twice (by %q)", errs.ErrInconsistentHeader, c, v.Name)
			}
			covered[c] = true
		}
		sum += v.NCols
	}

	if sum != h.NCols {
		return fmt.Errorf("%w: dependent variables cover %d columns, header declares %d",
			errs.ErrInconsistentHeader, sum, h.NCols)
	}

	for i, v := range h.Sweeps {
		if v.NCols != 0 {
			return fmt.Errorf("%w: sweep parameter %d (%q) has %d columns",
				errs.ErrInconsistentHeader, i, v.Name, v.NCols)
		}
	}

	return nil
}

// SequentialColumns assigns consecutive columns to vars in order, starting at 0, and
// returns the total. Variables with NCols 0 are given one column.
func SequentialColumns(vars []Var) int {
	col := 0
	for i := range vars {
		if vars[i].NCols == 0 {
			vars[i].NCols = 1
		}
		vars[i].Col = col
		col += vars[i].NCols
	}

	return col
}
