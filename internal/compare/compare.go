// Package compare holds the comparator type the tree is parameterized over.
package compare

import "cmp"

// Compare reports whether a sorts before (negative), equal to (zero), or
// after (positive) b, in the same convention as bytes.Compare.
type Compare[K any] func(a, b K) int

// Ordered builds a Compare[K] for any K that the standard library's cmp
// package already knows how to order, so callers with an int/string/float
// key do not need to hand-write a comparator.
func Ordered[K cmp.Ordered]() Compare[K] {
	return func(a, b K) int {
		return cmp.Compare(a, b)
	}
}
