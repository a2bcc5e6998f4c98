package gaussian

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/integral"
)

// sto3gH is the standard STO-3G hydrogen 1s shell.
func sto3gH(center [3]float64) basis.Shell {
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

func newEngine(t *testing.T, shells ...basis.Shell) *Engine {
	t.Helper()

	bs, err := basis.New(shells)
	require.NoError(t, err)

	eng, err := New(bs)
	require.NoError(t, err)

	return eng
}

func quartet(t *testing.T, eng *Engine, p, q, r, s int) float64 {
	t.Helper()

	buf, err := eng.Quartet(p, q, r, s)
	require.NoError(t, err)
	require.Len(t, buf, 1)

	return buf[0]
}

func TestBoys0(t *testing.T) {
	assert.Equal(t, 1.0, boys0(0))

	// F0(x) = sqrt(pi/x)*erf(sqrt(x))/2 for x > 0.
	for _, x := range []float64{1e-8, 1e-3, 0.5, 1, 3.7, 25, 400} {
		want := 0.5 * math.Sqrt(math.Pi/x) * math.Erf(math.Sqrt(x))
		assert.InDelta(t, want, boys0(x), 1e-12, "x=%g", x)
	}
}

func TestNew_NilBasis(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilBasis)
}

func TestNew_RejectsHigherShells(t *testing.T) {
	bs, err := basis.New([]basis.Shell{
		sto3gH([3]float64{}),
		{L: 1, Primitives: []basis.Primitive{{Exponent: 1, Coefficient: 1}}},
	})
	require.NoError(t, err)

	_, err = New(bs)
	require.Error(t, err)

	var use *ErrUnsupportedShell
	require.ErrorAs(t, err, &use)
	assert.Equal(t, 1, use.Shell)
	assert.Equal(t, 1, use.L)
}

func TestQuartet_OutOfRange(t *testing.T) {
	eng := newEngine(t, sto3gH([3]float64{}))

	for _, idx := range []int{-1, 1, 42} {
		_, err := eng.Quartet(0, 0, 0, idx)
		require.Error(t, err)

		var oor *integral.ErrShellOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, idx, oor.Shell)
	}
}

func TestQuartet_SelfRepulsionSinglePrimitive(t *testing.T) {
	// A single normalized primitive s Gaussian with exponent a has the
	// closed-form self repulsion (00|00) = 2*sqrt(a/pi).
	for _, alpha := range []float64{0.25, 1, 2.5} {
		eng := newEngine(t, basis.Shell{
			L:          0,
			Primitives: []basis.Primitive{{Exponent: alpha, Coefficient: 1}},
		})

		want := 2 * math.Sqrt(alpha/math.Pi)
		assert.InDelta(t, want, quartet(t, eng, 0, 0, 0, 0), 1e-12, "alpha=%g", alpha)
	}
}

func TestQuartet_EightfoldSymmetry(t *testing.T) {
	eng := newEngine(t,
		sto3gH([3]float64{0, 0, 0}),
		sto3gH([3]float64{0, 0, 1.4}),
		sto3gH([3]float64{0, 1.1, 2.0}),
	)

	ref := quartet(t, eng, 0, 1, 2, 0)
	perms := [][4]int{
		{1, 0, 2, 0},
		{0, 1, 0, 2},
		{1, 0, 0, 2},
		{2, 0, 0, 1},
		{0, 2, 0, 1},
		{2, 0, 1, 0},
		{0, 2, 1, 0},
	}

	for _, p := range perms {
		assert.InDelta(t, ref, quartet(t, eng, p[0], p[1], p[2], p[3]), 1e-13, "perm=%v", p)
	}
}

func TestQuartet_DecayWithDistance(t *testing.T) {
	near := newEngine(t, sto3gH([3]float64{}), sto3gH([3]float64{0, 0, 1}))
	far := newEngine(t, sto3gH([3]float64{}), sto3gH([3]float64{0, 0, 5}))

	vNear := quartet(t, near, 0, 0, 1, 1)
	vFar := quartet(t, far, 0, 0, 1, 1)

	assert.Positive(t, vNear)
	assert.Positive(t, vFar)
	assert.Less(t, vFar, vNear)
}

func TestQuartet_TranslationInvariance(t *testing.T) {
	at := func(shift float64) *Engine {
		return newEngine(t,
			sto3gH([3]float64{shift, shift, shift}),
			sto3gH([3]float64{shift, shift, shift + 1.4}),
		)
	}

	orig := at(0)
	moved := at(25)

	for _, q := range [][4]int{{0, 0, 0, 0}, {0, 0, 1, 1}, {0, 1, 0, 1}, {1, 0, 0, 0}} {
		want := quartet(t, orig, q[0], q[1], q[2], q[3])
		got := quartet(t, moved, q[0], q[1], q[2], q[3])
		assert.InDelta(t, want, got, 1e-12, "quartet=%v", q)
	}
}

func TestQuartet_STO3GHydrogenReference(t *testing.T) {
	// H2 at 1.4 bohr, values from Szabo & Ostlund table 3.12.
	eng := newEngine(t, sto3gH([3]float64{}), sto3gH([3]float64{0, 0, 1.4}))

	assert.InDelta(t, 0.7746, quartet(t, eng, 0, 0, 0, 0), 1e-3)
	assert.InDelta(t, 0.5697, quartet(t, eng, 0, 0, 1, 1), 1e-3)
}

func TestQuartet_ScratchReuse(t *testing.T) {
	eng := newEngine(t, sto3gH([3]float64{}), sto3gH([3]float64{0, 0, 1.4}))

	b1, err := eng.Quartet(0, 0, 0, 0)
	require.NoError(t, err)
	first := b1[0]

	b2, err := eng.Quartet(0, 0, 1, 1)
	require.NoError(t, err)

	assert.True(t, &b1[0] == &b2[0], "quartet buffer should be reused")
	assert.NotEqual(t, first, b2[0])
}
