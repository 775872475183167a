package debug

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/xstd/alloc"
)

// Stats is a snapshot of the allocator counters.
type Stats struct {
	TotalAllocs       uint64 // successful Alloc and Realloc calls
	TotalFrees        uint64 // non-nil Free calls, including Realloc to size 0
	TotalAllocBytes   uint64
	TotalFreedBytes   uint64
	ActiveAllocs      uint64
	PeakAllocs        uint64
	ActiveBytes       uint64
	PeakBytes         uint64
	FailedAllocs      uint64 // target returned nil
	UntrackedFrees    uint64 // frees of addresses never handed out
	UntrackedReallocs uint64
	DoubleFrees       uint64
	ReusedLive        uint64 // live addresses handed out again without a Free
}

// Block is a live allocation.
type Block struct {
	Addr uintptr
	Size uint64
}

// Allocator wraps a target allocator and tracks every call.
//
// The target is borrowed: it must outlive the Allocator and is never closed
// by it. Allocator is not safe for concurrent use.
type Allocator struct {
	target   alloc.Allocator
	live     map[uintptr]uint64
	released *roaring64.Bitmap
	stats    Stats
	opts     options
}

// New creates a debug allocator forwarding to target.
func New(target alloc.Allocator, opts ...Option) (*Allocator, error) {
	if target == nil {
		return nil, fmt.Errorf("debug: nil target allocator: %w", alloc.ErrInvalidParameter)
	}

	a := &Allocator{
		target:   target,
		live:     make(map[uintptr]uint64),
		released: roaring64.New(),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a, nil
}

func (a *Allocator) logDebug(msg string, args ...any) {
	if a.opts.logger != nil && a.opts.verbose {
		a.opts.logger.Debug(msg, args...)
	}
}

func (a *Allocator) logWarn(msg string, args ...any) {
	if a.opts.logger != nil {
		a.opts.logger.Warn(msg, args...)
	}
}

// track records a new live block. If the target hands out an address that
// is still live (an arena after Reset), the old record is dropped first.
func (a *Allocator) track(addr uintptr, size uint64) {
	if old, ok := a.live[addr]; ok {
		a.stats.ReusedLive++
		a.stats.ActiveAllocs = subFloor(a.stats.ActiveAllocs, 1)
		a.stats.ActiveBytes = subFloor(a.stats.ActiveBytes, old)
	}
	a.live[addr] = size
	a.released.Remove(uint64(addr))

	a.stats.ActiveAllocs++
	a.stats.PeakAllocs = max(a.stats.PeakAllocs, a.stats.ActiveAllocs)
	a.stats.ActiveBytes += size
	a.stats.PeakBytes = max(a.stats.PeakBytes, a.stats.ActiveBytes)
}

// untrack forgets a live block and reports whether it was tracked.
func (a *Allocator) untrack(addr uintptr) bool {
	size, ok := a.live[addr]
	if !ok {
		return false
	}
	delete(a.live, addr)
	a.released.Add(uint64(addr))

	a.stats.ActiveBytes = subFloor(a.stats.ActiveBytes, size)
	a.stats.TotalFreedBytes += size
	return true
}

func subFloor(v, d uint64) uint64 {
	if v < d {
		return 0
	}
	return v - d
}

// Alloc forwards to the target and records the new block.
func (a *Allocator) Alloc(size uint64) []byte {
	if size == 0 {
		return nil
	}

	block := a.target.Alloc(size)
	if block == nil {
		a.stats.FailedAllocs++
		a.logWarn("alloc failed", "size", size)
		return nil
	}

	addr := alloc.Addr(block)
	a.track(addr, size)
	a.stats.TotalAllocs++
	a.stats.TotalAllocBytes += size

	a.logDebug("alloc", "addr", addr, "size", size)
	return block
}

// Free forwards to the target. The active allocation count is decremented
// on every non-nil call, floored at 0.
//
// A block freed twice is counted in DoubleFrees and not forwarded again.
func (a *Allocator) Free(block []byte) {
	if len(block) == 0 {
		return
	}

	addr := alloc.Addr(block)
	a.stats.TotalFrees++
	a.stats.ActiveAllocs = subFloor(a.stats.ActiveAllocs, 1)

	if a.untrack(addr) {
		a.target.Free(block)
		a.logDebug("free", "addr", addr)
		return
	}

	if a.released.Contains(uint64(addr)) {
		a.stats.DoubleFrees++
		a.logWarn("double free", "addr", addr)
		return
	}

	a.stats.UntrackedFrees++
	a.target.Free(block)
	a.logDebug("free untracked", "addr", addr)
}

// Realloc forwards to the target and moves the record of block to the
// returned address.
func (a *Allocator) Realloc(block []byte, size uint64) []byte {
	if len(block) == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		a.Free(block)
		return nil
	}

	oldAddr := alloc.Addr(block)
	oldSize, tracked := a.live[oldAddr]

	fresh := a.target.Realloc(block, size)
	if fresh == nil {
		a.stats.FailedAllocs++
		a.logWarn("realloc failed", "addr", oldAddr, "size", size)
		return nil
	}

	a.stats.TotalAllocs++
	a.stats.TotalAllocBytes += size
	newAddr := alloc.Addr(fresh)

	switch {
	case tracked && newAddr == oldAddr:
		a.live[oldAddr] = size
		a.stats.ActiveBytes = subFloor(a.stats.ActiveBytes, oldSize) + size
		a.stats.PeakBytes = max(a.stats.PeakBytes, a.stats.ActiveBytes)
	case tracked:
		a.untrack(oldAddr)
		a.stats.ActiveAllocs = subFloor(a.stats.ActiveAllocs, 1)
		a.track(newAddr, size)
	default:
		a.stats.UntrackedReallocs++
		a.track(newAddr, size)
	}

	a.logDebug("realloc", "from", oldAddr, "to", newAddr, "size", size)
	return fresh
}

// Stats returns a snapshot of the counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Leaks returns the blocks that are still live, sorted by address.
func (a *Allocator) Leaks() []Block {
	leaks := make([]Block, 0, len(a.live))
	for addr, size := range a.live {
		leaks = append(leaks, Block{Addr: addr, Size: size})
	}
	slices.SortFunc(leaks, func(x, y Block) int {
		switch {
		case x.Addr < y.Addr:
			return -1
		case x.Addr > y.Addr:
			return 1
		}
		return 0
	})
	return leaks
}

// Reset clears the cumulative counters and the double free history.
// Live blocks stay tracked, and the active and peak values restart from
// them.
func (a *Allocator) Reset() {
	var bytes uint64
	for _, size := range a.live {
		bytes += size
	}

	a.released.Clear()
	a.stats = Stats{
		ActiveAllocs: uint64(len(a.live)),
		PeakAllocs:   uint64(len(a.live)),
		ActiveBytes:  bytes,
		PeakBytes:    bytes,
	}
}

func (a *Allocator) String() string {
	s := a.stats
	return fmt.Sprintf(
		"DebugAllocator{allocs: %d, frees: %d, active: %d (%d bytes), peak: %d (%d bytes), failed: %d}",
		s.TotalAllocs, s.TotalFrees, s.ActiveAllocs, s.ActiveBytes, s.PeakAllocs, s.PeakBytes, s.FailedAllocs,
	)
}

// Compile-time interface check
var _ alloc.Allocator = (*Allocator)(nil)
