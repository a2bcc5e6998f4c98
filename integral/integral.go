// Package integral provides interfaces and types for two-electron repulsion
// integral engines.
package integral

import "fmt"

// ErrShellOutOfRange is a named error type for shell indexes outside the
// engine's basis set.
type ErrShellOutOfRange struct {
	Shell   int // Shell is the offending shell index
	NShells int // NShells is the number of shells in the basis set
}

// Error returns the error message for an out-of-range shell index.
func (e *ErrShellOutOfRange) Error() string {
	return fmt.Sprintf("integral: shell index %d out of range [0, %d)", e.Shell, e.NShells)
}

// Engine computes blocks of two-electron repulsion integrals (pq|rs) over
// shell quartets of a fixed basis set.
type Engine interface {
	// Quartet computes all integrals of the shell quartet (p q|r s) and
	// returns them in row-major order over the basis functions of p, q, r
	// and s. The integral of functions (fp fq|fr fs), with fp local to
	// shell p and so on, sits at index
	//
	//	fp*nq*nr*ns + fq*nr*ns + fr*ns + fs
	//
	// where nq, nr and ns are the function counts of shells q, r and s.
	//
	// The returned slice is scratch space owned by the engine: it stays
	// valid only until the next Quartet call, and callers must copy any
	// values they keep. Engines are not safe for concurrent use unless
	// documented otherwise.
	Quartet(p, q, r, s int) ([]float64, error)
}
