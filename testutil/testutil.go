package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/integral"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformRange returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) UniformRange(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// STO3GHydrogen returns the STO-3G hydrogen 1s shell at the given center.
func STO3GHydrogen(center [3]float64) basis.Shell {
	return basis.Shell{
		L:      0,
		Center: center,
		Primitives: []basis.Primitive{
			{Exponent: 3.42525091, Coefficient: 0.15432897},
			{Exponent: 0.62391373, Coefficient: 0.53532814},
			{Exponent: 0.16885540, Coefficient: 0.44463454},
		},
	}
}

// HydrogenChain builds a basis set of n STO-3G hydrogens spaced evenly
// along the z axis. Spacing is in bohr.
func HydrogenChain(n int, spacing float64) *basis.Set {
	shells := make([]basis.Shell, n)
	for i := range shells {
		shells[i] = STO3GHydrogen([3]float64{0, 0, float64(i) * spacing})
	}

	bs, err := basis.New(shells)
	if err != nil {
		panic(err)
	}

	return bs
}

// RandomSBasis builds a basis set of n single-primitive s shells with
// random exponents in [0.2, 2.5) and random centers in a 4 bohr box.
func RandomSBasis(rng *RNG, n int) *basis.Set {
	shells := make([]basis.Shell, n)
	for i := range shells {
		shells[i] = basis.Shell{
			L: 0,
			Center: [3]float64{
				rng.UniformRange(0, 4),
				rng.UniformRange(0, 4),
				rng.UniformRange(0, 4),
			},
			Primitives: []basis.Primitive{
				{Exponent: rng.UniformRange(0.2, 2.5), Coefficient: 1},
			},
		}
	}

	bs, err := basis.New(shells)
	if err != nil {
		panic(err)
	}

	return bs
}

// FuncEngine is an integral engine scripted by a quartet function. It
// serves bases whose shells each hold a single function, so every quartet
// block is one value. The scratch buffer is reused across calls, matching
// the contract real engines follow.
type FuncEngine struct {
	nshell int
	fn     func(p, q, r, s int) float64
	buf    []float64

	// Calls counts Quartet invocations.
	Calls int
}

var _ integral.Engine = (*FuncEngine)(nil)

// NewFuncEngine creates a scripted engine over nshell single-function
// shells.
func NewFuncEngine(nshell int, fn func(p, q, r, s int) float64) *FuncEngine {
	return &FuncEngine{
		nshell: nshell,
		fn:     fn,
		buf:    make([]float64, 1),
	}
}

// Quartet returns the scripted value for the shell quartet (p q|r s).
func (e *FuncEngine) Quartet(p, q, r, s int) ([]float64, error) {
	for _, i := range [...]int{p, q, r, s} {
		if i < 0 || i >= e.nshell {
			return nil, &integral.ErrShellOutOfRange{Shell: i, NShells: e.nshell}
		}
	}

	e.Calls++
	e.buf[0] = e.fn(p, q, r, s)

	return e.buf, nil
}

// SchwarzPairs computes the significant shell pairs of a single-function
// basis by direct enumeration of the diagonal quartets. It is the ground
// truth for sieve pair lists: pair (m,n) with m >= n survives when
// |(mn|mn)| >= threshold^2 / max.
func SchwarzPairs(eng integral.Engine, nshell int, threshold float64) ([][2]int, error) {
	values := make([][]float64, nshell)
	maxValue := 0.0

	for p := 0; p < nshell; p++ {
		values[p] = make([]float64, p+1)
		for q := 0; q <= p; q++ {
			buf, err := eng.Quartet(p, q, p, q)
			if err != nil {
				return nil, err
			}

			v := math.Abs(buf[0])
			values[p][q] = v
			if v > maxValue {
				maxValue = v
			}
		}
	}

	cutoff := threshold * threshold / maxValue

	var pairs [][2]int
	for p := 0; p < nshell; p++ {
		for q := 0; q <= p; q++ {
			if values[p][q] >= cutoff {
				pairs = append(pairs, [2]int{p, q})
			}
		}
	}

	return pairs, nil
}
