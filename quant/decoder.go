package quant

import (
	"fmt"

	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
)

// MaxIndex is the largest storage index a Decoder accepts. It bounds the row state a
// header can make the decoder allocate.
const MaxIndex = 1<<24 - 1

// Slot maps one dependent variable to its storage index.
type Slot struct {
	Index int            // storage index into the row state
	Type  format.VarType // selects the resolution
}

// Decoder reconstructs dense rows from sparse quantized updates.
type Decoder struct {
	res      Resolution
	maxIndex int
	slots    []Slot
	scale    []float64 // per storage index, valid where mapped is set
	mapped   []bool
	state    RowState
}

// NewDecoder creates a Decoder with the given resolutions and no slots.
func NewDecoder(res Resolution) *Decoder {
	return &Decoder{res: res, maxIndex: -1}
}

// Configure installs the index map for the dependent variables.
//
// slots[i] describes dependent variable i; its storage index must lie in [0, maxIndex].
// The row state is grown to maxIndex+1 slots if needed and never shrinks.
//
// Parameters:
//   - maxIndex: Largest storage index declared by the header
//   - slots: One entry per dependent variable
//
// Returns:
//   - error: ErrInconsistentHeader for maxIndex above MaxIndex, an index outside
//     [0, maxIndex] or two slots sharing an index with different resolutions,
//     ErrUnsupportedQuantizedType for a slot type without resolution
func (d *Decoder) Configure(maxIndex int, slots []Slot) error {
	if maxIndex < 0 && len(slots) > 0 {
		return fmt.Errorf("%w: max index %d with %d variables", errs.ErrInconsistentHeader, maxIndex, len(slots))
	}
	if maxIndex > MaxIndex {
		return fmt.Errorf("%w: max index %d exceeds %d", errs.ErrInconsistentHeader, maxIndex, MaxIndex)
	}

	scale := make([]float64, maxIndex+1)
	mapped := make([]bool, maxIndex+1)

	for i, slot := range slots {
		if slot.Index < 0 || slot.Index > maxIndex {
			return fmt.Errorf("%w: variable %d has index %d beyond max index %d",
				errs.ErrInconsistentHeader, i, slot.Index, maxIndex)
		}

		res, err := d.res.For(slot.Type)
		if err != nil {
			return fmt.Errorf("variable %d: %w", i, err)
		}

		if mapped[slot.Index] && scale[slot.Index] != res {
			return fmt.Errorf("%w: variable %d (%s) shares index %d with a variable of another resolution",
				errs.ErrInconsistentHeader, i, slot.Type, slot.Index)
		}
		scale[slot.Index] = res
		mapped[slot.Index] = true
	}

	d.maxIndex = maxIndex
	d.slots = append(d.slots[:0], slots...)
	d.scale = scale
	d.mapped = mapped
	d.state.Ensure(maxIndex + 1)

	return nil
}

// Resolution returns the decoder's resolutions.
func (d *Decoder) Resolution() Resolution {
	return d.res
}

// MaxIndex returns the largest configured storage index, -1 before Configure.
func (d *Decoder) MaxIndex() int {
	return d.maxIndex
}

// Slots returns the configured index map. The caller must not modify it.
func (d *Decoder) Slots() []Slot {
	return d.slots
}

// State returns the row state.
func (d *Decoder) State() *RowState {
	return &d.state
}

// Reset zeroes the row state. Call it at the start of every table.
func (d *Decoder) Reset() {
	d.state.Reset()
}

// Set decodes a stored integer for a storage index into the row state.
//
// Returns:
//   - error: ErrMalformedRow if index is out of range or not mapped to a variable
func (d *Decoder) Set(index int, stored int64) error {
	if index < 0 || index > d.maxIndex || !d.mapped[index] {
		return fmt.Errorf("%w: unknown index %d", errs.ErrMalformedRow, index)
	}

	d.state.Set(index, float64(stored)*d.scale[index])

	return nil
}

// Time decodes a stored independent-variable sample.
func (d *Decoder) Time(stored int64) float64 {
	return float64(stored) * d.res.Time
}

// Fill writes the current value of every dependent variable into dvals.
//
// dvals must hold at least len(Slots()) values.
func (d *Decoder) Fill(dvals []float64) {
	for i, slot := range d.slots {
		dvals[i] = d.state.Value(slot.Index)
	}
}

// Release returns the row state storage to the pool.
func (d *Decoder) Release() {
	d.state.Release()
}
