package stream

import (
	"fmt"
	"strconv"

	"github.com/arloliu/spicestream/format"
)

// Category classifies the variables of a stream.
type Category uint8

const (
	Independent Category = iota // Independent is the sweep axis of a table, one per stream.
	Dependent                   // Dependent is a signal recorded against the independent variable.
	Sweep                       // Sweep is a scalar parameter fixed for a whole table.
)

func (c Category) String() string {
	switch c {
	case Independent:
		return "independent"
	case Dependent:
		return "dependent"
	case Sweep:
		return "sweep"
	default:
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
}

// Var describes one variable of a stream.
//
// For dependent variables Col is the index of the first column in the row buffer
// filled by ReadRow and NCols the number of consecutive columns (1 for real data,
// 2 for complex data as real and imaginary part). The independent variable has
// NCols 1 and is delivered separately. Sweep parameters have NCols 0; Col is their
// position in the buffer filled by ReadSweep.
type Var struct {
	Name  string
	Type  format.VarType
	Col   int
	NCols int
}

// Covers reports whether column col of the row buffer belongs to v.
func (v Var) Covers(col int) bool {
	return col >= v.Col && col < v.Col+v.NCols
}

// ColumnName returns the display name of the i-th column of v.
//
// Single-column variables are named after the variable. The columns of a complex
// variable are suffixed ".re" and ".im"; wider variables get ".<i>".
func (v Var) ColumnName(i int) string {
	switch {
	case v.NCols <= 1:
		return v.Name
	case v.NCols == 2 && i == 0:
		return v.Name + ".re"
	case v.NCols == 2 && i == 1:
		return v.Name + ".im"
	default:
		return v.Name + "." + strconv.Itoa(i)
	}
}

func (v Var) String() string {
	return fmt.Sprintf("%s(%s, col=%d, ncols=%d)", v.Name, v.Type, v.Col, v.NCols)
}
