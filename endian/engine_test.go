package endian

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
	case 0x02:
		require.Equal(binary.LittleEndian, result)
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestNeedsSwap(t *testing.T) {
	if IsNativeLittleEndian() {
		require.False(t, NeedsSwap(GetLittleEndianEngine()))
		require.True(t, NeedsSwap(GetBigEndianEngine()))
	} else {
		require.True(t, NeedsSwap(GetLittleEndianEngine()))
		require.False(t, NeedsSwap(GetBigEndianEngine()))
	}

	require.False(t, NeedsSwap(CheckEndianness()))
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		name string
		want EndianEngine
	}{
		{"little", binary.LittleEndian},
		{"LE", binary.LittleEndian},
		{"big", binary.BigEndian},
		{"be", binary.BigEndian},
		{"native", CheckEndianness()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := ParseEngine(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, engine)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		engine, err := ParseEngine("middle")
		require.Error(t, err)
		require.Nil(t, engine)
	})
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{0, 1e-9, -3.3, math.MaxFloat64, math.SmallestNonzeroFloat64}

	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		var buf []byte
		for _, v := range values {
			buf = AppendFloat64(engine, buf, v)
		}
		require.Len(t, buf, len(values)*8)

		for i, v := range values {
			require.Equal(t, v, Float64(engine, buf[i*8:]))
		}
	}
}

func TestFloat64ByteOrder(t *testing.T) {
	le := AppendFloat64(GetLittleEndianEngine(), nil, 1.5)
	be := AppendFloat64(GetBigEndianEngine(), nil, 1.5)

	for i := range le {
		require.Equal(t, le[i], be[len(be)-1-i])
	}
}

func TestFloat32(t *testing.T) {
	engine := GetBigEndianEngine()
	b := engine.AppendUint32(nil, math.Float32bits(2.5))

	require.Equal(t, 2.5, Float32(engine, b))
}
