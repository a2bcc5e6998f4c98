// Package testutil provides testing utilities for the sieve.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating synthetic basis sets, scripting
// integral engines, and computing brute-force ground truth for
// significance checks.
//
// # Synthetic Basis Sets
//
//	bs := testutil.HydrogenChain(8, 1.4)  // 8 STO-3G hydrogens on a line
//
//	rng := testutil.NewRNG(seed)
//	bs := testutil.RandomSBasis(rng, 8)   // 8 random single-primitive s shells
//
// # Scripted Engines
//
//	eng := testutil.NewFuncEngine(bs.NShells(), func(p, q, r, s int) float64 {
//	    return 1.0
//	})
//
// # Ground Truth
//
//	pairs, _ := testutil.SchwarzPairs(eng, bs.NShells(), 1e-10)
package testutil
