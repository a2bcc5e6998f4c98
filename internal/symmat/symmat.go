// Package symmat provides dense symmetric float64 matrices backed by flat
// row-major storage. This is an internal package - the screening tables it
// backs are exposed through the root package accessors.
package symmat

import "fmt"

// Dense is an n×n symmetric matrix stored as a flat row-major slice.
// Entry (i,j) lives at data[i*n+j]; SetSym keeps (i,j) and (j,i) equal.
type Dense struct {
	n    int
	data []float64
}

// New creates a zeroed n×n matrix.
func New(n int) *Dense {
	return &Dense{
		n:    n,
		data: make([]float64, n*n),
	}
}

// FromData wraps an existing row-major slice of length n*n.
// The matrix takes ownership of the slice.
func FromData(n int, data []float64) (*Dense, error) {
	if len(data) != n*n {
		return nil, fmt.Errorf("symmat: data length %d does not match %d×%d", len(data), n, n)
	}
	return &Dense{n: n, data: data}, nil
}

// N returns the matrix order.
func (d *Dense) N() int {
	return d.n
}

// At returns entry (i,j). Indices must be in [0,n).
func (d *Dense) At(i, j int) float64 {
	return d.data[i*d.n+j]
}

// SetSym sets entries (i,j) and (j,i) to v.
func (d *Dense) SetSym(i, j int, v float64) {
	d.data[i*d.n+j] = v
	d.data[j*d.n+i] = v
}

// Data returns the backing row-major slice. Callers must treat it as
// read-only; it is shared with the matrix.
func (d *Dense) Data() []float64 {
	return d.data
}
