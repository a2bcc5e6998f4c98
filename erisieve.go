package erisieve

import (
	"math"
	"time"

	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/integral"
	"github.com/chemkit/erisieve/internal/pairset"
	"github.com/chemkit/erisieve/internal/symmat"
)

// Pair is a canonical shell or basis function index pair with M >= N.
type Pair struct {
	M int
	N int
}

// NotSignificant is the reverse map entry for pairs below the threshold.
const NotSignificant = -1

// Sieve precomputes Cauchy-Schwarz bounds on two-electron repulsion
// integrals so that integral evaluation loops can skip shell and function
// quartets whose contribution falls below a numerical threshold.
//
// The magnitude tables are computed once at construction and are immutable
// afterwards. SetThreshold rebuilds the derived pair lists, reverse maps,
// adjacency lists and membership sets; it must not run concurrently with
// reads. All other methods are safe for concurrent use between threshold
// changes.
type Sieve struct {
	bs   *basis.Set
	eng  integral.Engine
	opts Options

	nshell int
	nbf    int

	// per-shell function counts and offsets, cached from the basis set
	shellNF  []int
	shellOff []int

	// magnitude tables, write-once during construction
	shellValues *symmat.Dense
	funcValues  *symmat.Dense
	exchValues  *symmat.Dense // CSAM only
	funcSqrt    []float64     // CSAM only
	maxValue    float64

	// threshold state, rebuilt by SetThreshold
	threshold         float64
	threshold2        float64
	thresholdOverMax  float64
	threshold2OverMax float64

	shellPairs []Pair
	funcPairs  []Pair
	shellRev   []int
	funcRev    []int
	shellAdj   [][]int
	funcAdj    [][]int
	shellSet   *pairset.Set
	funcSet    *pairset.Set
}

// New builds a sieve over the given basis set. The engine supplies the
// diagonal integral blocks; it is only used during construction. The
// initial threshold from the options is applied before New returns.
func New(bs *basis.Set, eng integral.Engine, optFns ...func(o *Options)) (*Sieve, error) {
	if bs == nil {
		return nil, ErrNilBasis
	}
	if eng == nil {
		return nil, ErrNilEngine
	}

	opts := normalizeOptions(optFns)

	if opts.QQR {
		return nil, ErrQQRUnsupported
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 {
		return nil, &ErrInvalidThreshold{Threshold: opts.Threshold}
	}
	if opts.Parallelism > 1 && opts.EngineFactory == nil {
		return nil, ErrMissingEngineFactory
	}
	if !pairset.Fits(bs.NFunctions()) {
		return nil, &ErrBasisTooLarge{NFunctions: bs.NFunctions()}
	}

	sv := &Sieve{
		bs:     bs,
		eng:    eng,
		opts:   opts,
		nshell: bs.NShells(),
		nbf:    bs.NFunctions(),
	}

	sv.shellNF = make([]int, sv.nshell)
	sv.shellOff = make([]int, sv.nshell)
	for i := 0; i < sv.nshell; i++ {
		sv.shellNF[i] = bs.Shell(i).NFunctions()
		sv.shellOff[i] = bs.FunctionOffset(i)
	}

	start := time.Now()
	err := sv.build()
	elapsed := time.Since(start)

	quartets := sv.nshell * (sv.nshell + 1) / 2
	if opts.CSAM {
		quartets *= 2
	}
	opts.Metrics.RecordBuild(quartets, elapsed, err)
	opts.Logger.LogBuild(sv.nshell, sv.nbf, quartets, elapsed, err)

	if err != nil {
		return nil, err
	}

	if err := sv.SetThreshold(opts.Threshold); err != nil {
		return nil, err
	}

	return sv, nil
}

// Basis returns the basis set the sieve was built over.
func (sv *Sieve) Basis() *basis.Set { return sv.bs }

// NShells returns the number of shells in the basis set.
func (sv *Sieve) NShells() int { return sv.nshell }

// NFunctions returns the number of basis functions in the basis set.
func (sv *Sieve) NFunctions() int { return sv.nbf }

// Threshold returns the current screening cutoff.
func (sv *Sieve) Threshold() float64 { return sv.threshold }

// MaxPairValue returns the largest shell pair magnitude in the tables.
func (sv *Sieve) MaxPairValue() float64 { return sv.maxValue }

// CSAM reports whether the exchange-bound tables were built.
func (sv *Sieve) CSAM() bool { return sv.opts.CSAM }

// ShellPairValue returns the raw magnitude bound for a shell pair, without
// any threshold test. Both arguments must be valid shell indices.
func (sv *Sieve) ShellPairValue(m, n int) float64 { return sv.shellValues.At(m, n) }

// FunctionPairValue returns the magnitude bound for a basis function pair.
// Both arguments must be valid function indices.
func (sv *Sieve) FunctionPairValue(m, n int) float64 { return sv.funcValues.At(m, n) }

// ShellPairs returns the significant shell pairs at the current threshold
// in deterministic order: M ascending, N ascending within N <= M.
//
// The returned slice is shared with the sieve and valid until the next
// SetThreshold call.
func (sv *Sieve) ShellPairs() []Pair { return sv.shellPairs }

// FunctionPairs returns the significant basis function pairs at the current
// threshold, ordered like ShellPairs. The slice is shared with the sieve
// and valid until the next SetThreshold call.
func (sv *Sieve) FunctionPairs() []Pair { return sv.funcPairs }

// ShellPairsReverse returns, for each canonical pair index M*(M+1)/2+N with
// M >= N, the compact offset of that pair in ShellPairs, or NotSignificant.
// The slice is shared with the sieve and valid until the next SetThreshold
// call.
func (sv *Sieve) ShellPairsReverse() []int { return sv.shellRev }

// FunctionPairsReverse is the function-pair analog of ShellPairsReverse.
func (sv *Sieve) FunctionPairsReverse() []int { return sv.funcRev }

// ShellToShell returns, for each shell, the ascending list of partner
// shells forming a significant pair with it. Unlike ShellPairs the partner
// lists cover the full index range, so each significant pair appears in
// both directions. Shared with the sieve, valid until the next SetThreshold
// call.
func (sv *Sieve) ShellToShell() [][]int { return sv.shellAdj }

// FunctionToFunction is the function-level analog of ShellToShell.
func (sv *Sieve) FunctionToFunction() [][]int { return sv.funcAdj }
