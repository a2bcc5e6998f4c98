package erisieve

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemkit/erisieve/integral"
	"github.com/chemkit/erisieve/integral/gaussian"
	"github.com/chemkit/erisieve/testutil"
)

// chainSieve builds a sieve over n STO-3G hydrogens on a line.
func chainSieve(t *testing.T, n int, optFns ...func(o *Options)) *Sieve {
	t.Helper()

	bs := testutil.HydrogenChain(n, 1.4)
	eng, err := gaussian.New(bs)
	require.NoError(t, err)

	sv, err := New(bs, eng, optFns...)
	require.NoError(t, err)

	return sv
}

// funcSieve builds a sieve over n single-function shells with a scripted
// integral engine.
func funcSieve(t *testing.T, n int, fn func(p, q, r, s int) float64, optFns ...func(o *Options)) *Sieve {
	t.Helper()

	bs := testutil.HydrogenChain(n, 1.4)

	sv, err := New(bs, testutil.NewFuncEngine(n, fn), optFns...)
	require.NoError(t, err)

	return sv
}

func TestNew_Validation(t *testing.T) {
	bs := testutil.HydrogenChain(2, 1.4)
	eng := testutil.NewFuncEngine(2, func(p, q, r, s int) float64 { return 1 })

	t.Run("NilBasis", func(t *testing.T) {
		_, err := New(nil, eng)
		assert.ErrorIs(t, err, ErrNilBasis)
	})

	t.Run("NilEngine", func(t *testing.T) {
		_, err := New(bs, nil)
		assert.ErrorIs(t, err, ErrNilEngine)
	})

	t.Run("QQROption", func(t *testing.T) {
		_, err := New(bs, eng, func(o *Options) { o.QQR = true })
		assert.ErrorIs(t, err, ErrQQRUnsupported)
	})

	t.Run("NaNThreshold", func(t *testing.T) {
		_, err := New(bs, eng, WithThreshold(math.NaN()))

		var terr *ErrInvalidThreshold
		assert.ErrorAs(t, err, &terr)
	})

	t.Run("NegativeThreshold", func(t *testing.T) {
		_, err := New(bs, eng, WithThreshold(-1e-10))

		var terr *ErrInvalidThreshold
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, -1e-10, terr.Threshold)
	})

	t.Run("ParallelWithoutFactory", func(t *testing.T) {
		_, err := New(bs, eng, WithParallelism(2))
		assert.ErrorIs(t, err, ErrMissingEngineFactory)
	})
}

func TestNew_DegenerateBasis(t *testing.T) {
	bs := testutil.HydrogenChain(3, 1.4)
	eng := testutil.NewFuncEngine(3, func(p, q, r, s int) float64 { return 0 })

	_, err := New(bs, eng)
	assert.ErrorIs(t, err, ErrDegenerateBasis)
}

func TestNew_ZeroDiagonalCSAM(t *testing.T) {
	bs := testutil.HydrogenChain(3, 1.4)

	// Same-shell quartets vanish, everything else survives: the plain
	// tables build fine but the exchange normalization cannot.
	eng := testutil.NewFuncEngine(3, func(p, q, r, s int) float64 {
		if p == q && q == r && r == s {
			return 0
		}
		return 1
	})

	_, err := New(bs, eng, WithCSAM())

	var zerr *ErrZeroDiagonal
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, 0, zerr.Shell)
	assert.Equal(t, 0, zerr.Function)
}

func TestNew_FactoryErrors(t *testing.T) {
	bs := testutil.HydrogenChain(3, 1.4)
	eng := testutil.NewFuncEngine(3, func(p, q, r, s int) float64 { return 1 })

	t.Run("FactoryFails", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := New(bs, eng, WithParallelism(2), WithEngineFactory(func() (integral.Engine, error) {
			return nil, boom
		}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("FactoryReturnsNil", func(t *testing.T) {
		_, err := New(bs, eng, WithParallelism(2), WithEngineFactory(func() (integral.Engine, error) {
			return nil, nil
		}))
		assert.ErrorIs(t, err, ErrNilEngine)
	})
}

func TestSieve_TableSymmetry(t *testing.T) {
	sv := chainSieve(t, 4)

	var tableMax float64
	for m := 0; m < sv.NShells(); m++ {
		for n := 0; n < sv.NShells(); n++ {
			v := sv.ShellPairValue(m, n)
			assert.Equal(t, v, sv.ShellPairValue(n, m))
			if v > tableMax {
				tableMax = v
			}
		}
		assert.Greater(t, sv.ShellPairValue(m, m), 0.0)
	}
	assert.Equal(t, tableMax, sv.MaxPairValue())

	// One function per shell, so the function table mirrors the shell table.
	for m := 0; m < sv.NFunctions(); m++ {
		for n := 0; n < sv.NFunctions(); n++ {
			assert.Equal(t, sv.ShellPairValue(m, n), sv.FunctionPairValue(m, n))
		}
	}
}

func TestSieve_QuartetCounts(t *testing.T) {
	bs := testutil.HydrogenChain(4, 1.4)

	t.Run("Schwarz", func(t *testing.T) {
		eng := testutil.NewFuncEngine(4, func(p, q, r, s int) float64 { return 1 })

		_, err := New(bs, eng)
		require.NoError(t, err)
		assert.Equal(t, 10, eng.Calls)
	})

	t.Run("CSAM", func(t *testing.T) {
		eng := testutil.NewFuncEngine(4, func(p, q, r, s int) float64 { return 1 })

		_, err := New(bs, eng, WithCSAM())
		require.NoError(t, err)
		assert.Equal(t, 20, eng.Calls)
	})
}

func TestSieve_ParallelMatchesSerial(t *testing.T) {
	bs := testutil.HydrogenChain(9, 1.4)

	serialEng, err := gaussian.New(bs)
	require.NoError(t, err)
	serial, err := New(bs, serialEng, WithThreshold(1e-8))
	require.NoError(t, err)

	parallelEng, err := gaussian.New(bs)
	require.NoError(t, err)
	parallel, err := New(bs, parallelEng,
		WithThreshold(1e-8),
		WithParallelism(4),
		WithEngineFactory(func() (integral.Engine, error) {
			return gaussian.New(bs)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, serial.MaxPairValue(), parallel.MaxPairValue())
	for m := 0; m < bs.NShells(); m++ {
		for n := 0; n < bs.NShells(); n++ {
			assert.Equal(t, serial.ShellPairValue(m, n), parallel.ShellPairValue(m, n))
		}
	}
	assert.Equal(t, serial.ShellPairs(), parallel.ShellPairs())
	assert.Equal(t, serial.FunctionPairs(), parallel.FunctionPairs())
}

func TestSieve_ParallelMatchesSerialCSAM(t *testing.T) {
	const n = 7

	fn := func(p, q, r, s int) float64 {
		return 1 / float64(1+p+q+r+s)
	}

	serial := funcSieve(t, n, fn, WithCSAM())

	bs := testutil.HydrogenChain(n, 1.4)
	parallel, err := New(bs, testutil.NewFuncEngine(n, fn),
		WithCSAM(),
		WithParallelism(3),
		WithEngineFactory(func() (integral.Engine, error) {
			return testutil.NewFuncEngine(n, fn), nil
		}),
	)
	require.NoError(t, err)

	for m := 0; m < n; m++ {
		for q := 0; q < n; q++ {
			assert.Equal(t, serial.ShellPairValue(m, q), parallel.ShellPairValue(m, q))
		}
	}

	// Exchange tables feed the CSAM predicate, so compare through it.
	require.NoError(t, serial.SetThreshold(0.2))
	require.NoError(t, parallel.SetThreshold(0.2))
	for m := 0; m < n; m++ {
		for q := 0; q < n; q++ {
			want, err := serial.ShellSignificantCSAM(m, q, 0, n-1)
			require.NoError(t, err)
			got, err := parallel.ShellSignificantCSAM(m, q, 0, n-1)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestSieve_Stats(t *testing.T) {
	sv := chainSieve(t, 4)

	stats := sv.Stats()
	assert.Equal(t, 4, stats.NShells)
	assert.Equal(t, 4, stats.NFunctions)
	assert.Equal(t, 0.0, stats.Threshold)
	assert.Equal(t, sv.MaxPairValue(), stats.MaxPairValue)
	assert.False(t, stats.CSAM)
	assert.Equal(t, 10, stats.ShellPairs)
	assert.Equal(t, 10, stats.ShellPairsTotal)
	assert.Equal(t, 10, stats.FunctionPairs)
	assert.Equal(t, 10, stats.FunctionPairsTotal)
}

func TestSieve_Accessors(t *testing.T) {
	bs := testutil.HydrogenChain(3, 1.4)
	eng, err := gaussian.New(bs)
	require.NoError(t, err)

	sv, err := New(bs, eng, WithThreshold(1e-10), WithCSAM())
	require.NoError(t, err)

	assert.Same(t, bs, sv.Basis())
	assert.Equal(t, 3, sv.NShells())
	assert.Equal(t, 3, sv.NFunctions())
	assert.Equal(t, 1e-10, sv.Threshold())
	assert.True(t, sv.CSAM())
}
