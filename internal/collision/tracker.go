// Package collision tracks variable names by their hash ID while a catalog is built.
package collision

import "strings"

// Tracker records variable names with their hash IDs and detects duplicates and hash
// collisions. Names are compared case-insensitively, matching hash.NameID.
type Tracker struct {
	names        map[uint64][]string // Hash → distinct names sharing it
	count        int                 // Distinct names tracked
	hasCollision bool                // Whether two distinct names share a hash
}

// NewTracker creates a new name tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64][]string),
	}
}

// Track records name under its hash id.
//
// Different names sharing id are not an error; the collision flag is set and lookups
// must compare names.
//
// Returns:
//   - bool: true if the same name (ignoring case) was tracked before
func (t *Tracker) Track(name string, id uint64) bool {
	for _, existing := range t.names[id] {
		if strings.EqualFold(existing, name) {
			return true
		}
	}

	if len(t.names[id]) > 0 {
		t.hasCollision = true
	}
	t.names[id] = append(t.names[id], name)
	t.count++

	return false
}

// HasCollision returns true if two distinct names share a hash ID.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Count returns the number of distinct names tracked.
func (t *Tracker) Count() int {
	return t.count
}

// Reset clears all tracked names and the collision state.
func (t *Tracker) Reset() {
	clear(t.names)
	t.count = 0
	t.hasCollision = false
}
