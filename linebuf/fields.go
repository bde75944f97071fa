package linebuf

import (
	"bytes"
	"strconv"
	"unsafe"
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

// Fields splits line around runs of blanks and appends the fields to dst[:0].
//
// The fields alias line. No allocation happens when dst has enough capacity.
func Fields(line []byte, dst [][]byte) [][]byte {
	dst = dst[:0]

	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			break
		}

		start := i
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		dst = append(dst, line[start:i])
	}

	return dst
}

// TrimSpace returns line without leading and trailing blanks.
func TrimSpace(line []byte) []byte {
	return bytes.TrimFunc(line, func(r rune) bool {
		return r < 0x80 && isSpace(byte(r))
	})
}

// IsBlank reports whether line contains only blanks.
func IsBlank(line []byte) bool {
	for _, c := range line {
		if !isSpace(c) {
			return false
		}
	}

	return true
}

// ParseFloat parses b as a float64 without copying it into a string.
func ParseFloat(b []byte) (float64, error) {
	if len(b) == 0 {
		return strconv.ParseFloat("", 64)
	}

	return strconv.ParseFloat(unsafe.String(unsafe.SliceData(b), len(b)), 64)
}

// ParseInt parses b as a base 10 int64 without copying it into a string.
func ParseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return strconv.ParseInt("", 10, 64)
	}

	return strconv.ParseInt(unsafe.String(unsafe.SliceData(b), len(b)), 10, 64)
}
