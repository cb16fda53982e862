// Package testutil provides testing utilities for crep.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random interval tables and for
// verifying segmentation properties against a brute-force oracle.
//
// # Random Interval Generation
//
//	rng := testutil.NewRNG(seed)
//	tb := rng.IntervalTable(testutil.IntervalSpec{
//		Tracks:    4,
//		Segments:  10,
//		GapProb:   0.2,
//		Payload:   []string{"data"},
//	})
//
// # Coverage Oracle
//
//	covered := testutil.Covered(tb, keys, trackID, point)
package testutil
