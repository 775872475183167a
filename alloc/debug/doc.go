// Package debug provides an instrumenting allocator for tests.
//
// An Allocator forwards every call to a target allocator while counting
// calls and bytes. A side table keyed by block address records the size of
// every live block, so active bytes, peak usage and leaks are exact.
// Addresses released through the allocator are remembered in a compressed
// bitmap to detect double frees.
//
//	dbg, _ := debug.New(alloc.NewHeap())
//	runWorkload(dbg)
//	if leaks := dbg.Leaks(); len(leaks) > 0 {
//		t.Fatalf("leaked %d blocks", len(leaks))
//	}
package debug
