package alloc

import (
	"modernc.org/memory"

	"github.com/hupe1980/xstd/internal/conv"
)

// Heap is the system default allocator: malloc, realloc and free semantics
// over memory obtained from the operating system outside the Go heap.
//
// Because blocks never move and are invisible to the garbage collector,
// addresses of Heap blocks may be stored inside other allocator memory
// (pointer lists, hash map chains) and stay valid until freed.
//
// Heap is not safe for concurrent use.
type Heap struct {
	mem    memory.Allocator
	closed bool
}

// NewHeap creates a new Heap allocator.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc allocates size bytes. The contents are unspecified.
func (h *Heap) Alloc(size uint64) []byte {
	if h.closed || size == 0 {
		return nil
	}
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return nil
	}
	b, err := h.mem.Malloc(n)
	if err != nil || len(b) == 0 {
		return nil
	}
	return b[:n:n]
}

// Realloc resizes block, preserving min(old, new) bytes of content.
func (h *Heap) Realloc(block []byte, size uint64) []byte {
	if len(block) == 0 {
		return h.Alloc(size)
	}
	if size == 0 {
		h.Free(block)
		return nil
	}
	if h.closed {
		return nil
	}
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return nil
	}
	b, err := h.mem.Realloc(block, n)
	if err != nil || len(b) == 0 {
		return nil
	}
	return b[:n:n]
}

// Free releases block.
func (h *Heap) Free(block []byte) {
	if len(block) == 0 || h.closed {
		return
	}
	_ = h.mem.Free(block)
}

// Close returns all memory to the operating system. Every block handed out
// by h becomes invalid. Subsequent allocations fail.
func (h *Heap) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.mem.Close()
}

// Compile-time interface check
var _ Allocator = (*Heap)(nil)
