package erisieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellSignificantCSAM_Disabled(t *testing.T) {
	sv := chainSieve(t, 2)

	ok, err := sv.ShellSignificantCSAM(0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrCSAMDisabled)
	assert.False(t, ok)
}

func TestShellSignificantQQR_Unsupported(t *testing.T) {
	sv := chainSieve(t, 2)

	ok, err := sv.ShellSignificantQQR(0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrQQRUnsupported)
	assert.False(t, ok)
}

func TestShellSignificantCSAM_UniformTables(t *testing.T) {
	// Every quartet at 1.0 puts both the Schwarz and exchange tables at
	// 1.0, so the CSAM estimate is exactly 1.0 for every quartet.
	sv := funcSieve(t, 4, func(p, q, r, s int) float64 { return 1 }, WithCSAM())

	require.NoError(t, sv.SetThreshold(0.5))
	ok, err := sv.ShellSignificantCSAM(0, 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// threshold^2 = 2.25 > 1.0 drops every quartet.
	require.NoError(t, sv.SetThreshold(1.5))
	ok, err = sv.ShellSignificantCSAM(0, 1, 2, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShellSignificantCSAM_TighterThanSchwarz(t *testing.T) {
	// Diagonal quartets (PQ|PQ) all at 1.0, exchange quartets (PP|QQ)
	// across shells at 0.01. The Schwarz product for any quartet is 1.0
	// while the CSAM estimate for quartets spanning four shells collapses
	// to 1e-4.
	fn := func(p, q, r, s int) float64 {
		if p == q && r == s && p != r {
			return 0.01
		}
		return 1
	}

	sv := funcSieve(t, 4, fn, WithCSAM(), WithThreshold(0.05))

	// Schwarz keeps every pair at this cutoff.
	assert.True(t, sv.ShellPairSignificant(0, 1))
	assert.True(t, sv.ShellPairSignificant(2, 3))

	// CSAM prunes the spanning quartet: 1e-4 < threshold^2 = 2.5e-3.
	ok, err := sv.ShellSignificantCSAM(0, 1, 2, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	// For (MN|MN) the bound degrades to Schwarz and survives.
	ok, err = sv.ShellSignificantCSAM(1, 0, 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPairSignificant_OrderInsensitive(t *testing.T) {
	sv := chainSieve(t, 5, WithThreshold(1e-2))

	for m := 0; m < sv.NShells(); m++ {
		for n := 0; n < sv.NShells(); n++ {
			assert.Equal(t, sv.ShellPairSignificant(m, n), sv.ShellPairSignificant(n, m))
			assert.Equal(t, sv.FunctionPairSignificant(m, n), sv.FunctionPairSignificant(n, m))
		}
	}
}
