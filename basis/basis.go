// Package basis models contracted Gaussian basis sets at the granularity
// integral screening needs: shells with a center, an angular momentum, and a
// primitive expansion, plus precomputed function counts and global function
// offsets. Sets are immutable after construction.
package basis

import (
	"fmt"
	"math"
)

// Primitive is a single Gaussian primitive inside a contracted shell.
type Primitive struct {
	// Exponent is the Gaussian exponent alpha. Must be positive and finite.
	Exponent float64
	// Coefficient is the contraction coefficient. Must be finite.
	Coefficient float64
}

// Shell is a contracted shell of basis functions sharing one center and one
// primitive expansion.
type Shell struct {
	// L is the angular momentum: 0 = s, 1 = p, 2 = d, ...
	L int
	// Center is the shell center in bohr.
	Center [3]float64
	// Primitives is the contraction expansion. Read-only once the shell is
	// part of a Set.
	Primitives []Primitive
}

// NFunctions returns the number of Cartesian basis functions in the shell.
func (sh Shell) NFunctions() int {
	return (sh.L + 1) * (sh.L + 2) / 2
}

// ErrInvalidShell reports a shell that cannot form part of a valid set.
type ErrInvalidShell struct {
	Shell  int
	Reason string
}

func (e *ErrInvalidShell) Error() string {
	return fmt.Sprintf("basis: shell %d: %s", e.Shell, e.Reason)
}

// Set is a validated, immutable basis set.
type Set struct {
	shells  []Shell
	offsets []int
	nbf     int
}

// New validates shells and builds a Set. At least one shell is required;
// every shell needs at least one primitive with a positive finite exponent.
func New(shells []Shell) (*Set, error) {
	if len(shells) == 0 {
		return nil, &ErrInvalidShell{Shell: -1, Reason: "set has no shells"}
	}

	for i, sh := range shells {
		if sh.L < 0 {
			return nil, &ErrInvalidShell{Shell: i, Reason: fmt.Sprintf("negative angular momentum %d", sh.L)}
		}
		if len(sh.Primitives) == 0 {
			return nil, &ErrInvalidShell{Shell: i, Reason: "no primitives"}
		}
		for j, p := range sh.Primitives {
			if math.IsNaN(p.Exponent) || math.IsInf(p.Exponent, 0) || p.Exponent <= 0 {
				return nil, &ErrInvalidShell{Shell: i, Reason: fmt.Sprintf("primitive %d: exponent %g not positive", j, p.Exponent)}
			}
			if math.IsNaN(p.Coefficient) || math.IsInf(p.Coefficient, 0) {
				return nil, &ErrInvalidShell{Shell: i, Reason: fmt.Sprintf("primitive %d: coefficient %g not finite", j, p.Coefficient)}
			}
		}
	}

	offsets := make([]int, len(shells))
	nbf := 0
	for i, sh := range shells {
		offsets[i] = nbf
		nbf += sh.NFunctions()
	}

	return &Set{
		shells:  shells,
		offsets: offsets,
		nbf:     nbf,
	}, nil
}

// NShells returns the number of shells.
func (s *Set) NShells() int {
	return len(s.shells)
}

// NFunctions returns the total number of basis functions.
func (s *Set) NFunctions() int {
	return s.nbf
}

// Shell returns shell i. The index must be in [0, NShells).
func (s *Set) Shell(i int) Shell {
	return s.shells[i]
}

// FunctionOffset returns the global index of the first function owned by
// shell i. The index must be in [0, NShells).
func (s *Set) FunctionOffset(i int) int {
	return s.offsets[i]
}

// MaxShellFunctions returns the largest per-shell function count, which
// bounds integral block extents.
func (s *Set) MaxShellFunctions() int {
	maxN := 0
	for _, sh := range s.shells {
		if n := sh.NFunctions(); n > maxN {
			maxN = n
		}
	}
	return maxN
}
