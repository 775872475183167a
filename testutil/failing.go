package testutil

import (
	"github.com/hupe1980/xstd/alloc"
)

// FailingAllocator wraps an allocator and fails every allocation once a
// fixed number of successful Alloc/Realloc calls has been reached.
// Frees are always forwarded.
type FailingAllocator struct {
	target    alloc.Allocator
	remaining int
	failures  int
}

// NewFailingAllocator returns an allocator that lets the first n
// allocating calls through to target.
func NewFailingAllocator(target alloc.Allocator, n int) *FailingAllocator {
	return &FailingAllocator{target: target, remaining: n}
}

// SetRemaining resets the number of allocating calls that may still succeed.
func (f *FailingAllocator) SetRemaining(n int) {
	f.remaining = n
}

// Failures returns the number of calls that were failed on purpose.
func (f *FailingAllocator) Failures() int {
	return f.failures
}

func (f *FailingAllocator) take() bool {
	if f.remaining <= 0 {
		f.failures++
		return false
	}
	f.remaining--
	return true
}

// Alloc implements alloc.Allocator.
func (f *FailingAllocator) Alloc(size uint64) []byte {
	if !f.take() {
		return nil
	}
	return f.target.Alloc(size)
}

// Realloc implements alloc.Allocator.
func (f *FailingAllocator) Realloc(block []byte, size uint64) []byte {
	if size == 0 {
		return f.target.Realloc(block, 0)
	}
	if !f.take() {
		return nil
	}
	return f.target.Realloc(block, size)
}

// Free implements alloc.Allocator.
func (f *FailingAllocator) Free(block []byte) {
	f.target.Free(block)
}

// Compile-time interface check
var _ alloc.Allocator = (*FailingAllocator)(nil)
