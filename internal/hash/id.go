package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NameID computes the xxHash64 of a variable name folded to lower case.
//
// SPICE signal names are case-insensitive, so "V(OUT)" and "v(out)" share an ID.
func NameID(name string) uint64 {
	return xxhash.Sum64String(strings.ToLower(name))
}
