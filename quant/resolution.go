package quant

import (
	"fmt"

	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
)

// Resolution holds the scale factors that turn stored integers into physical values.
type Resolution struct {
	Voltage float64 // volts per stored unit
	Current float64 // amperes per stored unit
	Time    float64 // seconds per stored unit
}

// For returns the scale factor for variables of type t.
//
// Returns:
//   - float64: The resolution for time, voltage or current
//   - error: ErrUnsupportedQuantizedType for any other type
func (r Resolution) For(t format.VarType) (float64, error) {
	switch t { //nolint: exhaustive
	case format.Voltage:
		return r.Voltage, nil
	case format.Current:
		return r.Current, nil
	case format.Time:
		return r.Time, nil
	default:
		return 0, fmt.Errorf("%w: %s", errs.ErrUnsupportedQuantizedType, t)
	}
}

// Scale converts a stored integer of type t into its physical value.
func (r Resolution) Scale(t format.VarType, stored int64) (float64, error) {
	res, err := r.For(t)
	if err != nil {
		return 0, err
	}

	return float64(stored) * res, nil
}
