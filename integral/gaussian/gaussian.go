// Package gaussian implements an analytic two-electron integral engine for
// contracted s-type Gaussian basis sets.
package gaussian

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/integral"
)

// ErrNilBasis is returned when the engine is created without a basis set.
var ErrNilBasis = errors.New("gaussian: nil basis set")

// ErrUnsupportedShell is a named error type for shells the engine cannot
// integrate.
type ErrUnsupportedShell struct {
	Shell int // Shell is the offending shell index
	L     int // L is the shell's angular momentum
}

// Error returns the error message for an unsupported shell.
func (e *ErrUnsupportedShell) Error() string {
	return fmt.Sprintf("gaussian: shell %d has angular momentum %d, only s shells are supported", e.Shell, e.L)
}

// primitive holds an exponent and its contraction coefficient with the
// s-type normalization constant (2a/pi)^(3/4) folded in.
type primitive struct {
	alpha float64
	coeff float64
}

type shell struct {
	center [3]float64
	prims  []primitive
}

// Engine computes (pq|rs) blocks analytically over s-type shells using the
// closed-form contracted Gaussian repulsion integral.
//
// Engine is not safe for concurrent use: the slice returned by Quartet is
// scratch space reused across calls.
type Engine struct {
	shells []shell
	buf    []float64
}

var _ integral.Engine = (*Engine)(nil)

// New creates an engine over the given basis set. Every shell must be an s
// shell; higher angular momenta are rejected.
func New(bs *basis.Set) (*Engine, error) {
	if bs == nil {
		return nil, ErrNilBasis
	}

	shells := make([]shell, bs.NShells())
	for i := range shells {
		sh := bs.Shell(i)
		if sh.L != 0 {
			return nil, &ErrUnsupportedShell{Shell: i, L: sh.L}
		}

		prims := make([]primitive, len(sh.Primitives))
		for j, p := range sh.Primitives {
			prims[j] = primitive{
				alpha: p.Exponent,
				coeff: p.Coefficient * math.Pow(2*p.Exponent/math.Pi, 0.75),
			}
		}

		shells[i] = shell{center: sh.Center, prims: prims}
	}

	return &Engine{shells: shells, buf: make([]float64, 1)}, nil
}

// Quartet implements integral.Engine. Every s shell carries a single basis
// function, so the returned block always has length one.
func (e *Engine) Quartet(p, q, r, s int) ([]float64, error) {
	for _, idx := range [4]int{p, q, r, s} {
		if idx < 0 || idx >= len(e.shells) {
			return nil, &integral.ErrShellOutOfRange{Shell: idx, NShells: len(e.shells)}
		}
	}

	e.buf[0] = e.eri(&e.shells[p], &e.shells[q], &e.shells[r], &e.shells[s])

	return e.buf, nil
}

// eri evaluates the contracted (pq|rs) repulsion integral over four s
// shells by summing the primitive closed form over all exponent quartets.
func (e *Engine) eri(sp, sq, sr, ss *shell) float64 {
	ab2 := dist2(sp.center, sq.center)
	cd2 := dist2(sr.center, ss.center)

	var res float64

	for _, a := range sp.prims {
		for _, b := range sq.prims {
			pab := a.alpha + b.alpha
			kab := math.Exp(-a.alpha * b.alpha / pab * ab2)
			cab := composite(a.alpha, b.alpha, pab, sp.center, sq.center)

			for _, c := range sr.prims {
				for _, d := range ss.prims {
					pcd := c.alpha + d.alpha
					kcd := math.Exp(-c.alpha * d.alpha / pcd * cd2)
					ccd := composite(c.alpha, d.alpha, pcd, sr.center, ss.center)

					pre := 2 * math.Pi * math.Pi / (pab * pcd) * math.Sqrt(math.Pi/(pab+pcd))
					x := dist2(cab, ccd) / (1/pab + 1/pcd)

					res += a.coeff * b.coeff * c.coeff * d.coeff * pre * kab * kcd * boys0(x)
				}
			}
		}
	}

	return res
}

// boys0 is the zeroth-order Boys function F0.
func boys0(x float64) float64 {
	if x == 0 {
		return 1
	}

	return mathext.GammaIncReg(0.5, x) * math.Gamma(0.5) / (2 * math.Sqrt(x))
}

// composite returns the exponent-weighted center of two primitives.
func composite(aAlpha, bAlpha, p float64, a, b [3]float64) [3]float64 {
	var c [3]float64
	for i := range c {
		c[i] = (aAlpha*a[i] + bAlpha*b[i]) / p
	}

	return c
}

func dist2(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]

	return dx*dx + dy*dy + dz*dz
}
