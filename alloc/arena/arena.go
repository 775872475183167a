package arena

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/internal/conv"
	"github.com/hupe1980/xstd/internal/mem"
	"github.com/hupe1980/xstd/internal/mmap"
)

const (
	// Alignment is the alignment of every block returned by the arena.
	Alignment = 16

	// HeaderSize is the size of the state header the arena writes at the
	// (aligned) start of its buffer.
	HeaderSize = 32

	headerMagic = 0x414e4552415f5858 // "XX_ARENA"
	noTail      = ^uint64(0)
)

// Stats tracks arena memory usage metrics.
//
// Note on semantics:
//   - Capacity: total buffer size, header included
//   - HeaderBytes: alignment padding plus the in-buffer state header
//   - BytesUsed: bytes requested by allocations since the last reset
//   - BytesWasted: alignment padding between allocations since the last reset
//   - Allocs: allocations since the last reset
//   - TotalAllocs: cumulative allocation count
type Stats struct {
	Capacity    uint64
	HeaderBytes uint64
	BytesUsed   uint64
	BytesWasted uint64
	Allocs      uint64
	TotalAllocs uint64
	Resets      uint64
}

// Arena is a bump-pointer allocator over a fixed buffer.
//
// Invariant: headerOffset <= offset <= capacity.
type Arena struct {
	buf          []byte
	base         uintptr
	capacity     uint64
	headerOffset uint64
	offset       uint64
	tail         uint64 // start of the most recent allocation, noTail if none
	mapping      *mmap.Mapping
	opts         options
	stats        Stats
}

// New creates an arena over buf. The caller keeps ownership of buf, which
// must outlive the arena and every block allocated from it.
//
// Returns alloc.ErrInvalidParameter for an empty buffer and
// alloc.ErrOutOfMemory if buf cannot host the aligned state header.
func New(buf []byte, opts ...Option) (*Arena, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("arena: null or empty buffer: %w", alloc.ErrInvalidParameter)
	}

	capacity, err := conv.IntToUint64(len(buf))
	if err != nil {
		return nil, fmt.Errorf("arena: %w: %w", alloc.ErrInvalidParameter, err)
	}

	base := alloc.Addr(buf)
	aligned, ok := conv.AlignUp(uint64(base), Alignment)
	if !ok {
		return nil, fmt.Errorf("arena: buffer address cannot be aligned: %w", alloc.ErrOutOfMemory)
	}
	alignDiff := aligned - uint64(base)

	headerEnd, ok := conv.AddOverflowSafe(alignDiff, HeaderSize)
	if !ok || headerEnd > capacity {
		return nil, fmt.Errorf("arena: buffer of %d bytes cannot host header: %w", capacity, alloc.ErrOutOfMemory)
	}

	a := &Arena{
		buf:          buf[:capacity:capacity],
		base:         base,
		capacity:     capacity,
		headerOffset: headerEnd,
		offset:       headerEnd,
		tail:         noTail,
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	hdr := a.buf[alignDiff:headerEnd]
	binary.LittleEndian.PutUint64(hdr[0:], headerMagic)
	binary.LittleEndian.PutUint64(hdr[8:], capacity)
	binary.LittleEndian.PutUint64(hdr[16:], headerEnd)
	binary.LittleEndian.PutUint64(hdr[24:], 0)

	a.stats.Capacity = capacity
	a.stats.HeaderBytes = headerEnd

	return a, nil
}

// NewSized creates an arena over a fresh 16-byte aligned Go buffer of size
// bytes. The buffer is released with the arena once it is unreachable.
func NewSized(size int, opts ...Option) (*Arena, error) {
	buf := mem.AllocAligned(size, Alignment)
	if buf == nil {
		return nil, fmt.Errorf("arena: invalid size %d: %w", size, alloc.ErrInvalidParameter)
	}
	return New(buf, opts...)
}

// NewMapped creates an arena over a fresh anonymous memory mapping of size
// bytes. The arena owns the mapping and releases it on Close.
func NewMapped(size int, opts ...Option) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("arena: invalid size %d: %w", size, alloc.ErrInvalidParameter)
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("arena: failed to map %d bytes: %w: %w", size, alloc.ErrOutOfMemory, err)
	}

	a, err := New(m.Bytes(), opts...)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	a.mapping = m
	return a, nil
}

func (a *Arena) alignedOffset(off uint64) (uint64, bool) {
	abs, ok := conv.AddOverflowSafe(uint64(a.base), off)
	if !ok {
		return 0, false
	}
	aligned, ok := conv.AlignUp(abs, Alignment)
	if !ok {
		return 0, false
	}
	return aligned - uint64(a.base), true
}

// fits reports the end offset of a size-byte block at off, or false when it
// would run past the buffer or overflow.
func (a *Arena) fits(off, size uint64) (uint64, bool) {
	end, ok := conv.AddOverflowSafe(off, size)
	if !ok || end > a.capacity {
		return 0, false
	}
	return end, true
}

func (a *Arena) offsetOf(block []byte) (uint64, bool) {
	addr := alloc.Addr(block)
	if addr < a.base || uint64(addr-a.base) >= a.capacity {
		return 0, false
	}
	return uint64(addr - a.base), true
}

// Alloc returns a 16-byte aligned block of size bytes, or nil if size is 0
// or the arena cannot fit it.
func (a *Arena) Alloc(size uint64) []byte {
	if a.buf == nil || size == 0 {
		return nil
	}

	aligned, ok := a.alignedOffset(a.offset)
	if !ok {
		return nil
	}
	end, ok := a.fits(aligned, size)
	if !ok {
		return nil
	}

	a.stats.BytesWasted += aligned - a.offset
	a.stats.BytesUsed += size
	a.stats.Allocs++
	a.stats.TotalAllocs++

	a.tail = aligned
	a.offset = end
	return a.buf[aligned:end:end]
}

// Realloc resizes block to size bytes.
//
// If block is the tail allocation it is grown or shrunk in place. Otherwise
// a fresh block is allocated and, unless WithCopyOnRelocate is set, the old
// contents are NOT copied. Blocks that do not belong to the arena yield nil.
func (a *Arena) Realloc(block []byte, size uint64) []byte {
	if len(block) == 0 {
		return a.Alloc(size)
	}
	if a.buf == nil || size == 0 {
		return nil
	}

	off, ok := a.offsetOf(block)
	if !ok {
		return nil
	}

	if off == a.tail {
		end, ok := a.fits(off, size)
		if !ok {
			return nil
		}
		a.stats.BytesUsed = a.stats.BytesUsed - (a.offset - off) + size
		a.offset = end
		return a.buf[off:end:end]
	}

	fresh := a.Alloc(size)
	if fresh != nil && a.opts.copyOnRelocate {
		copy(fresh, block)
	}
	return fresh
}

// Free is a no-op: arenas never reclaim individual blocks.
func (a *Arena) Free([]byte) {}

// Reset rewinds the arena to just after its header. Every block previously
// returned becomes invalid.
func (a *Arena) Reset() {
	a.offset = a.headerOffset
	a.tail = noTail
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
	a.stats.Allocs = 0
	a.stats.Resets++
}

// Close releases the arena. For arenas created with NewMapped the mapping is
// unmapped; for caller-owned buffers only the reference is dropped.
// The arena cannot be used afterwards.
func (a *Arena) Close() error {
	a.buf = nil
	a.offset = a.headerOffset
	a.tail = noTail
	if a.mapping != nil {
		m := a.mapping
		a.mapping = nil
		return m.Close()
	}
	return nil
}

// Owned reports whether the arena owns its buffer.
func (a *Arena) Owned() bool {
	return a.mapping != nil
}

// Len returns the current bump offset, header included.
func (a *Arena) Len() uint64 {
	return a.offset
}

// Cap returns the total buffer capacity, header included.
func (a *Arena) Cap() uint64 {
	return a.capacity
}

// HeaderOffset returns the offset of the first byte available for allocation.
func (a *Arena) HeaderOffset() uint64 {
	return a.headerOffset
}

// Remaining returns the number of bytes left before the end of the buffer,
// ignoring alignment of the next allocation.
func (a *Arena) Remaining() uint64 {
	return a.capacity - a.offset
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{cap: %d, used: %d, wasted: %d, free: %d, allocs: %d, resets: %d, owned: %t}",
		a.capacity,
		a.stats.BytesUsed,
		a.stats.BytesWasted,
		a.Remaining(),
		a.stats.Allocs,
		a.stats.Resets,
		a.Owned(),
	)
}

// Compile-time interface check
var _ alloc.Allocator = (*Arena)(nil)
