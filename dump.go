package erisieve

import (
	"bufio"
	"fmt"
	"io"
)

// DumpTo writes every table, list and map to w in a text layout meant for
// debugging small systems; output grows quadratically with basis size. The
// layout is not a stable interface.
func (sv *Sieve) DumpTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "  ==> Sieve Debug <==\n\n")
	fmt.Fprintf(bw, "    Sieve Cutoff = %11.3E\n", sv.threshold)
	fmt.Fprintf(bw, "    Sieve^2      = %11.3E\n", sv.threshold2)
	fmt.Fprintf(bw, "    Max          = %11.3E\n", sv.maxValue)
	fmt.Fprintf(bw, "    Sieve/Max    = %11.3E\n", sv.thresholdOverMax)
	fmt.Fprintf(bw, "    Sieve^2/Max  = %11.3E\n\n", sv.threshold2OverMax)

	fmt.Fprintf(bw, "   => Shell Pair Values <=\n\n")
	for m := 0; m < sv.nshell; m++ {
		for n := 0; n < sv.nshell; n++ {
			fmt.Fprintf(bw, "    (%3d, %3d| = %11.3E\n", m, n, sv.shellValues.At(m, n))
		}
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Function Pair Values <=\n\n")
	for m := 0; m < sv.nbf; m++ {
		for n := 0; n < sv.nbf; n++ {
			fmt.Fprintf(bw, "    (%3d, %3d| = %11.3E\n", m, n, sv.funcValues.At(m, n))
		}
	}
	fmt.Fprintf(bw, "\n")

	if sv.opts.CSAM {
		fmt.Fprintf(bw, "   => Shell Pair Exchange Values <=\n\n")
		for m := 0; m < sv.nshell; m++ {
			for n := 0; n < sv.nshell; n++ {
				fmt.Fprintf(bw, "    (%3d, %3d| = %11.3E\n", m, n, sv.exchValues.At(m, n))
			}
		}
		fmt.Fprintf(bw, "\n")
	}

	fmt.Fprintf(bw, "   => Significant Shell Pairs <=\n\n")
	for i, pair := range sv.shellPairs {
		fmt.Fprintf(bw, "    %6d = (%3d,%3d|\n", i, pair.M, pair.N)
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Significant Function Pairs <=\n\n")
	for i, pair := range sv.funcPairs {
		fmt.Fprintf(bw, "    %6d = (%3d,%3d|\n", i, pair.M, pair.N)
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Significant Shell Pairs Reverse <=\n\n")
	for m := 0; m < sv.nshell; m++ {
		for n := 0; n <= m; n++ {
			fmt.Fprintf(bw, "    %6d = (%3d,%3d|\n", sv.shellRev[m*(m+1)/2+n], m, n)
		}
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Significant Function Pairs Reverse <=\n\n")
	for m := 0; m < sv.nbf; m++ {
		for n := 0; n <= m; n++ {
			fmt.Fprintf(bw, "    %6d = (%3d,%3d|\n", sv.funcRev[m*(m+1)/2+n], m, n)
		}
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Shell to Shell <=\n\n")
	for m := 0; m < sv.nshell; m++ {
		for _, n := range sv.shellAdj[m] {
			fmt.Fprintf(bw, "    (%3d, %3d|\n", m, n)
		}
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "   => Function to Function <=\n\n")
	for m := 0; m < sv.nbf; m++ {
		for _, n := range sv.funcAdj[m] {
			fmt.Fprintf(bw, "    (%3d, %3d|\n", m, n)
		}
	}
	fmt.Fprintf(bw, "\n")

	return bw.Flush()
}
