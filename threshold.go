package erisieve

import (
	"math"
	"time"

	"github.com/chemkit/erisieve/internal/pairset"
)

// SetThreshold replaces the screening cutoff and rebuilds every derived
// structure from the magnitude tables: the significant pair lists, reverse
// maps, adjacency lists and membership sets. The rebuild is all-or-nothing
// and must not run concurrently with reads of those structures.
//
// Calling SetThreshold twice with the same value yields identical
// structures.
func (sv *Sieve) SetThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return &ErrInvalidThreshold{Threshold: threshold}
	}
	if sv.shellValues == nil || sv.funcValues == nil {
		return ErrTablesNotBuilt
	}

	start := time.Now()
	sv.applyThreshold(threshold)
	elapsed := time.Since(start)

	sv.opts.Metrics.RecordRebuild(len(sv.shellPairs), len(sv.funcPairs), elapsed)
	sv.opts.Logger.LogRebuild(threshold, len(sv.shellPairs), len(sv.funcPairs), elapsed)

	return nil
}

func (sv *Sieve) applyThreshold(threshold float64) {
	sv.threshold = threshold
	sv.threshold2 = threshold * threshold
	sv.thresholdOverMax = threshold / sv.maxValue
	sv.threshold2OverMax = sv.threshold2 / sv.maxValue

	cutoff := sv.threshold2OverMax

	// Canonical triangular passes. The running pair index munu equals
	// M*(M+1)/2+N, which is also the bitmap key.
	sv.shellPairs = sv.shellPairs[:0]
	sv.shellSet = pairset.New()
	if len(sv.shellRev) != sv.nshell*(sv.nshell+1)/2 {
		sv.shellRev = make([]int, sv.nshell*(sv.nshell+1)/2)
	}

	offset := 0
	munu := 0
	for m := 0; m < sv.nshell; m++ {
		for n := 0; n <= m; n++ {
			if sv.shellValues.At(m, n) >= cutoff {
				sv.shellPairs = append(sv.shellPairs, Pair{M: m, N: n})
				sv.shellSet.Add(m, n)
				sv.shellRev[munu] = offset
				offset++
			} else {
				sv.shellRev[munu] = NotSignificant
			}
			munu++
		}
	}

	sv.funcPairs = sv.funcPairs[:0]
	sv.funcSet = pairset.New()
	if len(sv.funcRev) != sv.nbf*(sv.nbf+1)/2 {
		sv.funcRev = make([]int, sv.nbf*(sv.nbf+1)/2)
	}

	offset = 0
	munu = 0
	for m := 0; m < sv.nbf; m++ {
		for n := 0; n <= m; n++ {
			if sv.funcValues.At(m, n) >= cutoff {
				sv.funcPairs = append(sv.funcPairs, Pair{M: m, N: n})
				sv.funcSet.Add(m, n)
				sv.funcRev[munu] = offset
				offset++
			} else {
				sv.funcRev[munu] = NotSignificant
			}
			munu++
		}
	}

	// Full-range adjacency passes. Table symmetry keeps these consistent
	// with the canonical lists.
	if len(sv.shellAdj) != sv.nshell {
		sv.shellAdj = make([][]int, sv.nshell)
	}
	for m := 0; m < sv.nshell; m++ {
		sv.shellAdj[m] = sv.shellAdj[m][:0]
		for n := 0; n < sv.nshell; n++ {
			if sv.shellValues.At(m, n) >= cutoff {
				sv.shellAdj[m] = append(sv.shellAdj[m], n)
			}
		}
	}

	if len(sv.funcAdj) != sv.nbf {
		sv.funcAdj = make([][]int, sv.nbf)
	}
	for m := 0; m < sv.nbf; m++ {
		sv.funcAdj[m] = sv.funcAdj[m][:0]
		for n := 0; n < sv.nbf; n++ {
			if sv.funcValues.At(m, n) >= cutoff {
				sv.funcAdj[m] = append(sv.funcAdj[m], n)
			}
		}
	}
}
