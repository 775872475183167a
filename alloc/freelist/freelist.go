package freelist

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/internal/conv"
	"github.com/hupe1980/xstd/internal/mem"
)

// Allocator is a first-fit free-list allocator over a fixed buffer.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	buf      []byte
	base     uintptr
	capacity uint64
	state    uint64 // offset of the state header
	first    uint64 // offset of the first block header
}

// Stats summarises the block chain.
type Stats struct {
	Capacity    uint64
	Blocks      int
	FreeBlocks  int
	UsedBytes   uint64 // payload bytes held by allocated blocks
	FreeBytes   uint64 // payload bytes available in free blocks
	LargestFree uint64 // largest single allocation that can currently succeed, a multiple of Alignment
}

// New creates an allocator over buf. The caller keeps ownership of buf,
// which must outlive the allocator and every block allocated from it.
//
// Returns alloc.ErrInvalidParameter if buf is too small to host the state
// header and one block of Alignment usable bytes after alignment.
func New(buf []byte) (*Allocator, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("freelist: null or empty buffer: %w", alloc.ErrInvalidParameter)
	}

	capacity, err := conv.IntToUint64(len(buf))
	if err != nil {
		return nil, fmt.Errorf("freelist: %w: %w", alloc.ErrInvalidParameter, err)
	}

	base := alloc.Addr(buf)
	aligned, ok := conv.AlignUp(uint64(base), Alignment)
	if !ok {
		return nil, fmt.Errorf("freelist: buffer address cannot be aligned: %w", alloc.ErrInvalidParameter)
	}
	alignDiff := aligned - uint64(base)

	first := alignDiff + StateHeaderSize
	if first+BlockHeaderSize+Alignment > capacity {
		return nil, fmt.Errorf("freelist: buffer of %d bytes too small: %w", capacity, alloc.ErrInvalidParameter)
	}

	a := &Allocator{
		buf:      buf[:capacity:capacity],
		base:     base,
		capacity: capacity,
		state:    alignDiff,
		first:    first,
	}

	st := a.buf[alignDiff:first]
	clear(st)
	binary.LittleEndian.PutUint64(st[offMagic:], stateMagic)
	binary.LittleEndian.PutUint64(st[offCapacity:], capacity)
	binary.LittleEndian.PutUint64(st[offHead:], first)

	a.writeBlock(first, capacity-first, 0, true)

	return a, nil
}

// NewSized creates an allocator over a fresh 16-byte aligned Go buffer of
// size bytes.
func NewSized(size int) (*Allocator, error) {
	buf := mem.AllocAligned(size, Alignment)
	if buf == nil {
		return nil, fmt.Errorf("freelist: invalid size %d: %w", size, alloc.ErrInvalidParameter)
	}
	return New(buf)
}

func alignSize(size uint64) (uint64, bool) {
	return conv.AlignUp(size, Alignment)
}

// payload returns the block view for the block at off.
func (a *Allocator) payload(off, size uint64) []byte {
	start := off + BlockHeaderSize
	end := start + size
	return a.buf[start:end:end]
}

// headerOf returns the header offset of the block whose payload is block,
// or false if block was not handed out by this allocator.
func (a *Allocator) headerOf(block []byte) (uint64, bool) {
	if a.buf == nil {
		return 0, false
	}
	addr := alloc.Addr(block)
	if addr < a.base {
		return 0, false
	}
	rel := uint64(addr - a.base)
	if rel < a.first+BlockHeaderSize || rel >= a.capacity {
		return 0, false
	}
	off := rel - BlockHeaderSize
	if (off-a.first)%Alignment != 0 {
		return 0, false
	}
	return off, true
}

// Alloc returns a 16-byte aligned block of size bytes, or nil if size is 0
// or no free block is large enough.
func (a *Allocator) Alloc(size uint64) []byte {
	if a.buf == nil || size == 0 {
		return nil
	}

	aligned, ok := alignSize(size)
	if !ok {
		return nil
	}
	total, ok := conv.AddOverflowSafe(aligned, BlockHeaderSize)
	if !ok {
		return nil
	}

	for off := a.head(); off != 0; off = a.blockNext(off) {
		if !a.blockFree(off) {
			continue
		}
		blockSize := a.blockSize(off)
		if blockSize < total {
			continue
		}

		if leftover := blockSize - total; leftover > minSplit {
			split := off + total
			a.writeBlock(split, leftover, a.blockNext(off), true)
			a.setBlockSize(off, total)
			a.setBlockNext(off, split)
		}

		a.setBlockFree(off, false)
		return a.payload(off, size)
	}

	return nil
}

// Free releases block. Blocks that were not handed out by the allocator are
// ignored.
func (a *Allocator) Free(block []byte) {
	if len(block) == 0 {
		return
	}
	off, ok := a.headerOf(block)
	if !ok {
		return
	}
	a.setBlockFree(off, true)
	a.coalesce()
}

// coalesce merges address-adjacent free blocks. After a merge the sweep
// stays on the merged block so it can absorb further neighbours.
func (a *Allocator) coalesce() {
	curr := a.head()
	for curr != 0 {
		next := a.blockNext(curr)
		if next == 0 {
			return
		}
		if a.blockFree(curr) && a.blockFree(next) && curr+a.blockSize(curr) == next {
			a.setBlockSize(curr, a.blockSize(curr)+a.blockSize(next))
			a.setBlockNext(curr, a.blockNext(next))
			continue
		}
		curr = next
	}
}

// Realloc resizes block to size bytes.
//
// If the new size fits the block's usable size the same address is returned.
// Otherwise a new block is allocated, the old contents are copied and the old
// block is freed. On failure nil is returned and block stays valid.
func (a *Allocator) Realloc(block []byte, size uint64) []byte {
	if len(block) == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		a.Free(block)
		return nil
	}

	off, ok := a.headerOf(block)
	if !ok {
		return nil
	}

	usable := a.blockSize(off) - BlockHeaderSize
	if size <= usable {
		return a.payload(off, size)
	}

	fresh := a.Alloc(size)
	if fresh == nil {
		return nil
	}
	copy(fresh, a.payload(off, usable))
	a.Free(block)
	return fresh
}

// UsableSize returns the payload capacity of block, or 0 if block does not
// belong to the allocator.
func (a *Allocator) UsableSize(block []byte) uint64 {
	if len(block) == 0 {
		return 0
	}
	off, ok := a.headerOf(block)
	if !ok {
		return 0
	}
	return a.blockSize(off) - BlockHeaderSize
}

// Walk calls fn for each block in address order until fn returns false.
func (a *Allocator) Walk(fn func(Block) bool) {
	if a.buf == nil {
		return
	}
	for off := a.head(); off != 0; off = a.blockNext(off) {
		if !fn(a.block(off)) {
			return
		}
	}
}

// Stats returns a summary of the block chain.
func (a *Allocator) Stats() Stats {
	s := Stats{Capacity: a.capacity}
	a.Walk(func(b Block) bool {
		s.Blocks++
		if b.Free {
			s.FreeBlocks++
			s.FreeBytes += b.Usable()
			// the trailing block may end on a partial granule
			s.LargestFree = max(s.LargestFree, b.Usable()&^(Alignment-1))
		} else {
			s.UsedBytes += b.Usable()
		}
		return true
	})
	return s
}

// Close drops the reference to the buffer. The allocator cannot be used
// afterwards.
func (a *Allocator) Close() error {
	a.buf = nil
	return nil
}

func (a *Allocator) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"FreeList{cap: %d, blocks: %d, free: %d, freeBytes: %d, largest: %d}",
		s.Capacity, s.Blocks, s.FreeBlocks, s.FreeBytes, s.LargestFree,
	)
}

// Compile-time interface check
var _ alloc.Allocator = (*Allocator)(nil)
