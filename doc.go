// Package erisieve provides Cauchy-Schwarz screening for two-electron
// repulsion integrals in Gaussian basis sets.
//
// The number of integral quartets (MN|RS) grows as O(N^4) with basis size,
// but the Schwarz bound |(MN|RS)| <= sqrt((MN|MN)) * sqrt((RS|RS)) lets most
// of them be skipped without computing them. The sieve precomputes the
// diagonal magnitudes (MN|MN) once per basis, then answers significance
// queries and enumerates the surviving pairs in O(1) per lookup.
//
// # Quick Start
//
//	bs, _ := basis.New(shells)
//	eng, _ := gaussian.New(bs)
//
//	sv, err := erisieve.New(bs, eng, erisieve.WithThreshold(1e-10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, pair := range sv.ShellPairs() {
//	    // Only significant (M,N| shell pairs, M >= N.
//	    fmt.Println(pair.M, pair.N)
//	}
//
//	ok := sv.ShellPairSignificant(3, 7)
//
// # Changing the Threshold
//
// The magnitude tables depend only on the basis set, so the cutoff can be
// retuned without recomputing any integrals:
//
//	sv.SetThreshold(1e-8) // rebuilds pair lists from the cached tables
//
// # CSAM Screening
//
// The tighter CSAM bound additionally uses exchange-type magnitudes and
// prunes quartets the plain Schwarz bound keeps:
//
//	sv, _ := erisieve.New(bs, eng, erisieve.WithCSAM(), erisieve.WithThreshold(1e-10))
//	keep, _ := sv.ShellSignificantCSAM(m, n, r, s)
//
// # Snapshots
//
// Tables can be persisted and restored without an integral engine, so a
// large basis is screened once and reloaded cheaply:
//
//	_ = sv.SaveSnapshotFile("water.sieve")
//	sv2, _ := erisieve.LoadSnapshotFile("water.sieve", bs)
//
// # Key Features
//
//   - Schwarz and CSAM shell-quartet bounds
//   - Shell and basis-function pair significance in O(1)
//   - Significant pair lists, reverse maps and adjacency lists
//   - Threshold retuning without integral recomputation
//   - Parallel table construction across integral engines
//   - Compressed, checksummed snapshots (zstd, LZ4)
package erisieve
