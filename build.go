package erisieve

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/chemkit/erisieve/integral"
	"github.com/chemkit/erisieve/internal/symmat"
)

// build fills the magnitude tables, and the exchange tables when CSAM is
// enabled, tracking the global maximum as it goes.
func (sv *Sieve) build() error {
	sv.shellValues = symmat.New(sv.nshell)
	sv.funcValues = symmat.New(sv.nbf)
	sv.maxValue = 0

	engines, err := sv.workerEngines()
	if err != nil {
		return err
	}

	if err := sv.buildPairValues(engines); err != nil {
		return err
	}

	if sv.maxValue == 0 {
		return ErrDegenerateBasis
	}

	if sv.opts.CSAM {
		sv.exchValues = symmat.New(sv.nshell)
		sv.funcSqrt = make([]float64, sv.nbf)

		if len(engines) == 1 {
			return sv.fillExchangeValues(engines[0])
		}
		return sv.fillExchangeValuesParallel(engines)
	}

	return nil
}

// workerEngines returns one engine per worker: the construction engine
// first, then factory-built engines for the rest. The worker count never
// exceeds the number of shell rows.
func (sv *Sieve) workerEngines() ([]integral.Engine, error) {
	n := min(sv.opts.Parallelism, sv.nshell)
	if n < 1 {
		n = 1
	}

	engines := make([]integral.Engine, 1, n)
	engines[0] = sv.eng

	for len(engines) < n {
		eng, err := sv.opts.EngineFactory()
		if err != nil {
			return nil, fmt.Errorf("erisieve: engine factory: %w", err)
		}
		if eng == nil {
			return nil, ErrNilEngine
		}
		engines = append(engines, eng)
	}

	return engines, nil
}

func (sv *Sieve) buildPairValues(engines []integral.Engine) error {
	if len(engines) == 1 {
		tableMax, err := sv.fillPairValues(engines[0], 0, 1)
		if err != nil {
			return err
		}
		sv.maxValue = tableMax

		return nil
	}

	// Rows are dealt round robin. A worker owning row P writes only cells
	// (P,Q) and mirrors (Q,P) with Q <= P, so writes never overlap across
	// workers.
	maxes := make([]float64, len(engines))

	g := new(errgroup.Group)
	for w := range engines {
		g.Go(func() error {
			tableMax, err := sv.fillPairValues(engines[w], w, len(engines))
			maxes[w] = tableMax

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, m := range maxes {
		if m > sv.maxValue {
			sv.maxValue = m
		}
	}

	return nil
}

// fillPairValues computes the diagonal quartet (PQ|PQ) for rows start,
// start+stride, ... with Q <= P, extracts the largest absolute diagonal
// element per shell pair, and broadcasts it over the pair's function block.
// It returns the largest magnitude seen.
func (sv *Sieve) fillPairValues(eng integral.Engine, start, stride int) (float64, error) {
	var tableMax float64

	for p := start; p < sv.nshell; p += stride {
		np, op := sv.shellNF[p], sv.shellOff[p]

		for q := 0; q <= p; q++ {
			nq, oq := sv.shellNF[q], sv.shellOff[q]

			buf, err := eng.Quartet(p, q, p, q)
			if err != nil {
				return 0, err
			}

			var pairMax float64
			for fp := 0; fp < np; fp++ {
				for fq := 0; fq < nq; fq++ {
					v := math.Abs(buf[fp*(nq*np*nq+nq)+fq*(np*nq+1)])
					if v > pairMax {
						pairMax = v
					}
				}
			}

			if pairMax > tableMax {
				tableMax = pairMax
			}
			sv.shellValues.SetSym(p, q, pairMax)

			for fp := 0; fp < np; fp++ {
				for fq := 0; fq < nq; fq++ {
					sv.funcValues.SetSym(op+fp, oq+fq, pairMax)
				}
			}
		}
	}

	return tableMax, nil
}

// fillExchangeValues computes the exchange bounds serially, visiting Q from
// P downward so that the square roots for shell P are in place before any
// off-diagonal pair divides by them.
func (sv *Sieve) fillExchangeValues(eng integral.Engine) error {
	for p := 0; p < sv.nshell; p++ {
		for q := p; q >= 0; q-- {
			var err error
			if q == p {
				err = sv.fillExchangeDiagonal(eng, p)
			} else {
				err = sv.fillExchangePair(eng, p, q)
			}
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// fillExchangeValuesParallel builds the exchange bounds in two phases: all
// same-shell quartets first so the square roots are fully populated, then
// the off-diagonal pairs. The tables come out identical to the serial
// order since every entry depends only on its own integral block.
func (sv *Sieve) fillExchangeValuesParallel(engines []integral.Engine) error {
	n := len(engines)

	g := new(errgroup.Group)
	for w := range engines {
		g.Go(func() error {
			for p := w; p < sv.nshell; p += n {
				if err := sv.fillExchangeDiagonal(engines[w], p); err != nil {
					return err
				}
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	g = new(errgroup.Group)
	for w := range engines {
		g.Go(func() error {
			for p := w; p < sv.nshell; p += n {
				for q := p - 1; q >= 0; q-- {
					if err := sv.fillExchangePair(engines[w], p, q); err != nil {
						return err
					}
				}
			}

			return nil
		})
	}

	return g.Wait()
}

// fillExchangeDiagonal handles the same-shell quartet (PP|PP): it stores
// the per-function square roots used as normalization denominators, then
// the diagonal exchange entry. A zero square root would poison every bound
// that divides by it, so it fails the build instead.
func (sv *Sieve) fillExchangeDiagonal(eng integral.Engine, p int) error {
	np, op := sv.shellNF[p], sv.shellOff[p]

	buf, err := eng.Quartet(p, p, p, p)
	if err != nil {
		return err
	}

	for fp := 0; fp < np; fp++ {
		v := math.Sqrt(math.Abs(buf[fp*(np*np*np+np)+fp*(np*np+1)]))
		if v == 0 {
			return &ErrZeroDiagonal{Shell: p, Function: op + fp}
		}
		sv.funcSqrt[op+fp] = v
	}

	var pairMax float64
	for fp := 0; fp < np; fp++ {
		for fq := 0; fq < np; fq++ {
			v := math.Abs(buf[fp*np*np*(np+1)+fq*(np+1)]) / (sv.funcSqrt[op+fp] * sv.funcSqrt[op+fq])
			if v > pairMax {
				pairMax = v
			}
		}
	}
	sv.exchValues.SetSym(p, p, pairMax)

	return nil
}

// fillExchangePair handles an off-diagonal quartet (PP|QQ) with Q < P. The
// square roots for both shells must already be populated.
func (sv *Sieve) fillExchangePair(eng integral.Engine, p, q int) error {
	np, op := sv.shellNF[p], sv.shellOff[p]
	nq, oq := sv.shellNF[q], sv.shellOff[q]

	buf, err := eng.Quartet(p, p, q, q)
	if err != nil {
		return err
	}

	var pairMax float64
	for fp := 0; fp < np; fp++ {
		for fq := 0; fq < nq; fq++ {
			v := math.Abs(buf[fp*nq*nq*(np+1)+fq*(nq+1)]) / (sv.funcSqrt[op+fp] * sv.funcSqrt[oq+fq])
			if v > pairMax {
				pairMax = v
			}
		}
	}
	sv.exchValues.SetSym(p, q, pairMax)

	return nil
}
