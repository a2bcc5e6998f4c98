package erisieve

import "math"

// ShellSignificantCSAM reports whether the shell quartet (MN|RS) can
// contribute at the current threshold according to the CSAM bound: the two
// Cauchy-Schwarz magnitudes are tightened by the larger of the two exchange
// cross products before comparing against the squared cutoff.
//
// Returns ErrCSAMDisabled unless the sieve was built with CSAM enabled.
// All four arguments must be valid shell indices.
func (sv *Sieve) ShellSignificantCSAM(m, n, r, s int) (bool, error) {
	if !sv.opts.CSAM {
		return false, ErrCSAMDisabled
	}

	mnmn := sv.shellValues.At(n, m)
	rsrs := sv.shellValues.At(s, r)

	mmrr := sv.exchValues.At(r, m)
	nnss := sv.exchValues.At(s, n)
	mmss := sv.exchValues.At(s, m)
	nnrr := sv.exchValues.At(r, n)

	csam2 := max(mmrr*nnss, mmss*nnrr)
	mnrs2 := mnmn * rsrs * csam2

	return math.Abs(mnrs2) >= sv.threshold2, nil
}

// ShellSignificantQQR is the long-range distance/extent significance test.
// The extent data it depends on has no functioning build path, so the test
// is rejected with ErrQQRUnsupported instead of returning results computed
// from empty tables.
func (sv *Sieve) ShellSignificantQQR(m, n, r, s int) (bool, error) {
	return false, ErrQQRUnsupported
}

// ShellPairSignificant reports whether the shell pair survives the current
// threshold. Argument order does not matter.
func (sv *Sieve) ShellPairSignificant(m, n int) bool {
	return sv.shellSet.Contains(m, n)
}

// FunctionPairSignificant reports whether the basis function pair survives
// the current threshold. Argument order does not matter.
func (sv *Sieve) FunctionPairSignificant(m, n int) bool {
	return sv.funcSet.Contains(m, n)
}
