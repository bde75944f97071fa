package format

import "strings"

type (
	VarType         uint8
	CompressionType uint8
)

const (
	Unknown   VarType = 0 // Unknown represents a variable without a known physical type.
	Time      VarType = 1 // Time represents a time axis.
	Voltage   VarType = 2 // Voltage represents a node voltage.
	Current   VarType = 3 // Current represents a branch current.
	Frequency VarType = 4 // Frequency represents a frequency axis.

	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed file.
	CompressionGzip CompressionType = 0x2 // CompressionGzip represents a gzip stream.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents a Zstandard stream.
	CompressionS2   CompressionType = 0x4 // CompressionS2 represents an S2/Snappy framed stream.
	CompressionLZ4  CompressionType = 0x5 // CompressionLZ4 represents an LZ4 frame stream.
)

func (t VarType) String() string {
	switch t {
	case Time:
		return "time"
	case Voltage:
		return "voltage"
	case Current:
		return "current"
	case Frequency:
		return "frequency"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseVarType maps a type keyword as written by simulators to a VarType.
//
// Matching is case-insensitive and accepts the long names ("voltage") as well as
// the single-letter forms used by quantized formats ("v", "i", "t", "f").
func ParseVarType(s string) VarType {
	switch strings.ToLower(s) {
	case "time", "t":
		return Time
	case "voltage", "v":
		return Voltage
	case "current", "i":
		return Current
	case "frequency", "f", "freq":
		return Frequency
	default:
		return Unknown
	}
}

// TypeFromName guesses a VarType from the conventional SPICE signal name.
//
// "time" and "freq"/"frequency" name axes, "v(...)" names a voltage and "i(...)" a
// current. Anything else is Unknown.
func TypeFromName(name string) VarType {
	lower := strings.ToLower(name)
	switch {
	case lower == "time":
		return Time
	case lower == "freq", lower == "frequency", lower == "hertz":
		return Frequency
	case strings.HasPrefix(lower, "v("):
		return Voltage
	case strings.HasPrefix(lower, "i("):
		return Current
	default:
		return Unknown
	}
}
