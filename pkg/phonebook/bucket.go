// Package phonebook assigns display names to fast-scroll buckets: the
// locale groupings shown alongside an alphabetically sorted contact list.
package phonebook

import "github.com/hazyhaar/rolodex/pkg/normalize"

// Bucket indices. Letters occupy 2..27 (A..Z).
const (
	BucketEmpty   = 0
	BucketNumeric = 1
	BucketOther   = 28
)

// Bucket maps a display form to its bucket index and label. Empty input
// gets the empty bucket; a leading digit goes to "#"; folded Latin letters
// get their uppercase letter; everything else collects under "…".
func Bucket(s string) (int, string) {
	n := normalize.Name(s)
	if n == "" {
		return BucketEmpty, ""
	}
	c := n[0]
	switch {
	case c >= '0' && c <= '9':
		return BucketNumeric, "#"
	case c >= 'a' && c <= 'z':
		return 2 + int(c-'a'), string(c - 'a' + 'A')
	default:
		return BucketOther, "…"
	}
}
