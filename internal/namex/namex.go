// Package namex canonicalizes free-text food and ingredient names into the
// matching key shared by the inventory and the recipe matcher.
package namex

import "strings"

// Normalize trims surrounding whitespace and lowercases s.
//
// Nothing else is touched: plurals, punctuation and inner spacing are kept
// as typed, so "Egg" and "Eggs" are different keys.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal reports whether a and b normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
