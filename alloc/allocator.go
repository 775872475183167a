package alloc

import "unsafe"

// Allocator hands out and reclaims blocks of raw memory.
//
// Implementations:
//   - Heap: off-heap malloc/realloc/free
//   - arena.Arena: bump allocation, Free is a no-op
//   - freelist.Allocator: general purpose over a fixed buffer
//   - debug.Allocator: instrumentation wrapper
//   - budget.Allocator: memory budget wrapper
type Allocator interface {
	// Alloc returns a block of size bytes or nil on failure.
	Alloc(size uint64) []byte

	// Realloc resizes block to size bytes. A nil block behaves as Alloc,
	// size 0 behaves as Free and returns nil. Returns nil on failure, in which
	// case block is left untouched.
	Realloc(block []byte, size uint64) []byte

	// Free releases block. A nil block is a no-op.
	Free(block []byte)
}

// Addr returns the address of the first byte of block, or 0 for an empty block.
func Addr(block []byte) uintptr {
	if len(block) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(block)))
}

// At returns a size-byte view of the block starting at p.
// It returns nil if p is nil or size is 0.
func At(p unsafe.Pointer, size int) []byte {
	if p == nil || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}

// FreePointer releases the block whose first byte is at p.
// It is meant for callers that kept only the address of a block,
// such as lists of owned pointers.
func FreePointer(a Allocator, p unsafe.Pointer) {
	if a == nil || p == nil {
		return
	}
	a.Free(unsafe.Slice((*byte)(p), 1))
}
