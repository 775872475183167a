// Package alloc defines the Allocator capability shared by every container
// in xstd and the system default implementation.
//
// # Allocator Contract
//
// An Allocator hands out blocks of raw bytes:
//
//   - Alloc(size): a block of exactly size bytes, or nil on failure.
//     Alloc(0) returns nil.
//   - Realloc(block, size): a block of size bytes holding the old contents
//     (subject to the implementation's documented quirks), or nil on failure.
//     A nil block behaves as Alloc; size 0 frees block and returns nil.
//   - Free(block): releases block. A nil block is a no-op.
//
// A block is identified by the address of its first byte. Implementations
// only use len(block) where their documentation says so; callers that only
// hold an address can release it with FreePointer.
//
// # Implementations
//
//   - Heap: malloc-style allocator whose memory lives outside the Go heap
//   - arena.Arena: bump-pointer allocator over a fixed buffer
//   - freelist.Allocator: first-fit allocator with split and coalesce
//   - debug.Allocator: counting wrapper around any Allocator
//   - budget.Allocator: wrapper charging live bytes against a memory budget
//
// # Errors
//
// Containers report failures with the sentinels defined here
// (ErrInvalidParameter, ErrOutOfMemory, ErrWouldOverflow, ErrRangeError),
// wrapped with context. Use errors.Is to test for them.
//
// # Thread Safety
//
// Allocators are not thread-safe. Callers must synchronize access
// externally.
package alloc
