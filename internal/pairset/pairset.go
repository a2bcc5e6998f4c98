// Package pairset provides canonical triangular pair indexing and a compact
// membership set over pair indices. It wraps a 32-bit Roaring Bitmap keyed by
// the canonical index, so significance membership stays O(1) without scanning
// the reverse maps.
package pairset

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Canonical returns the triangular index of the unordered pair (m,n):
// with M = max(m,n) and N = min(m,n), the index is M(M+1)/2 + N.
func Canonical(m, n int) int {
	if n > m {
		m, n = n, m
	}
	return m*(m+1)/2 + n
}

// Fits reports whether every canonical pair index over [0,order) fits the
// 32-bit key space of the bitmap.
func Fits(order int) bool {
	if order <= 0 {
		return true
	}
	return Canonical(order-1, order-1) <= math.MaxUint32
}

// Set is a membership set of unordered index pairs.
type Set struct {
	rb *roaring.Bitmap
}

// New creates an empty pair set.
func New() *Set {
	return &Set{
		rb: roaring.New(),
	}
}

// Add inserts the pair (m,n).
func (s *Set) Add(m, n int) {
	s.rb.Add(uint32(Canonical(m, n)))
}

// Contains reports whether the pair (m,n) is in the set.
func (s *Set) Contains(m, n int) bool {
	return s.rb.Contains(uint32(Canonical(m, n)))
}

// Cardinality returns the number of pairs in the set.
func (s *Set) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// IsEmpty returns true if the set holds no pairs.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}
