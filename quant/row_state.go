package quant

import "github.com/arloliu/spicestream/internal/pool"

// RowState is the dense row of last-known decoded values, indexed by storage index.
//
// The zero value is an empty state. Values persist across rows until Reset.
type RowState struct {
	values  []float64
	release func()
}

// Len returns the number of storage slots held.
func (s *RowState) Len() int {
	return len(s.values)
}

// Value returns the last value stored at index.
func (s *RowState) Value(index int) float64 {
	return s.values[index]
}

// Set stores v at index.
func (s *RowState) Set(index int, v float64) {
	s.values[index] = v
}

// Reset sets every slot back to 0.
func (s *RowState) Reset() {
	clear(s.values)
}

// Ensure grows the state to hold at least n slots, keeping current values.
// The state never shrinks.
func (s *RowState) Ensure(n int) {
	if n <= len(s.values) {
		return
	}

	grown, release := pool.GetFloat64Slice(n)
	copy(grown, s.values)
	if s.release != nil {
		s.release()
	}

	s.values = grown
	s.release = release
}

// Release returns the backing storage to the pool. The state is empty afterwards.
func (s *RowState) Release() {
	if s.release != nil {
		s.release()
	}
	s.values = nil
	s.release = nil
}
