// Package xstd provides allocator-aware containers and the allocators that
// back them.
//
// Every container takes an alloc.Allocator and obtains all of its memory
// through it. The module ships four allocators and two containers:
//
//	alloc.Heap          system memory outside the Go heap
//	arena.Arena         bump allocation over a fixed buffer, freed all at once
//	freelist.Allocator  first-fit allocation over a fixed buffer
//	debug.Allocator     counts calls and bytes, reports leaks
//	budget.Allocator    enforces a hard memory limit
//
//	list.List           growable array of fixed-size elements
//	hashmap.HashMap     chained hash map with byte keys
//
// # Quick Start
//
//	heap := alloc.NewHeap()
//	defer heap.Close()
//
//	m, _ := hashmap.NewOf[uint64](heap, 0)
//	defer m.Free()
//	_ = m.Set("answer", 42)
//
// # Scratch Memory
//
// An arena over a stack or pooled buffer gives allocation-free scratch space
// that is released with a single Reset:
//
//	a, _ := arena.New(buf)
//	l, _ := list.New(a, 8, 64)
//	// ... use l ...
//	a.Reset()
//
// Arena Realloc of a block that is not the most recent allocation does not
// copy its contents. Containers that may grow should size their capacity
// hint up front when backed by an arena, or use arena.WithCopyOnRelocate.
//
// # Error Handling
//
// Fallible operations return errors wrapping one of the sentinels in package
// alloc. CodeOf maps any such error to a Code:
//
//	if err := l.Get(i, out); xstd.CodeOf(err) == xstd.RangeError {
//		// index out of bounds
//	}
//
// Allocators themselves never return errors: Alloc and Realloc return nil on
// failure, which containers surface as alloc.ErrOutOfMemory.
//
// # Logging
//
// The debug and budget allocators accept a *slog.Logger. Logger wraps slog
// with helpers for allocator events.
//
// # Concurrency
//
// Allocators and containers are not safe for concurrent use. Callers that
// share them between goroutines must provide their own locking.
package xstd
