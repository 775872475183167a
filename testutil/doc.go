// Package testutil provides testing utilities for xstd.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source for keys, payloads and allocation
// sizes, and allocators that fail on demand to exercise error paths.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Keys(1000, 4, 32)   // distinct random keys
//	size := rng.Size(1, 512)        // allocation size in [1, 512]
//
// # Failure Injection
//
//	a := testutil.NewFailingAllocator(alloc.NewHeap(), 3)
//	// the 4th allocation (and every later one) returns nil
package testutil
