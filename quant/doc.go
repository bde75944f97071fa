// Package quant decodes quantized, sparsely updated simulator samples.
//
// Compact result formats store each sample as an integer that is multiplied by a
// fixed resolution to recover the physical value, and only write the signals that
// changed since the previous time point. Decoding such data needs three pieces:
//
//   - Resolution: the per-type scale factors (voltage, current, time)
//   - Slot: the mapping of each dependent variable to its storage index
//   - RowState: the dense row of last-known values, indexed by storage index
//
// A Decoder combines them:
//
//	dec := quant.NewDecoder(quant.Resolution{Voltage: 1e-6, Current: 1e-9, Time: 1e-12})
//	if err := dec.Configure(maxIndex, slots); err != nil {
//	    return err
//	}
//	dec.Reset()                 // start of table: every value is 0
//	_ = dec.Set(1, 3300)        // update one storage index
//	dec.Fill(dvals)             // dense row, unchanged signals keep their values
//
// Values are sticky: a signal absent from an update keeps the value it had in the
// previous row until Reset is called at the next table boundary.
//
// A Decoder is not safe for concurrent use.
package quant
