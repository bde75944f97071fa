// Package endian provides byte order engines for binary simulator output.
//
// Binary result formats store float64 samples in the byte order of the machine that
// ran the simulator. A stream records the declared order as an EndianEngine and uses
// NeedsSwap to report whether that order differs from the host (the ESWAP condition).
//
//	engine := endian.GetLittleEndianEngine()
//	v := endian.Float64(engine, record[0:8])
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned engines are
// immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() EndianEngine {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// NeedsSwap reports whether data written with engine must have its multi-byte values
// reversed to be read natively on this host.
func NeedsSwap(engine EndianEngine) bool {
	return engine != CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ParseEngine maps a byte order name to its engine.
//
// Accepted names are "little"/"le", "big"/"be" and "native"/"host", case-insensitive.
func ParseEngine(name string) (EndianEngine, error) {
	switch strings.ToLower(name) {
	case "little", "le", "little-endian":
		return binary.LittleEndian, nil
	case "big", "be", "big-endian":
		return binary.BigEndian, nil
	case "native", "host":
		return CheckEndianness(), nil
	default:
		return nil, fmt.Errorf("unknown byte order: %q", name)
	}
}

// Float64 decodes an IEEE 754 float64 from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// Float32 decodes an IEEE 754 float32 from the first 4 bytes of b, widened to float64.
func Float32(engine EndianEngine, b []byte) float64 {
	return float64(math.Float32frombits(engine.Uint32(b)))
}

// AppendFloat64 appends the IEEE 754 encoding of v to b.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}
