package freelist

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ErrCorrupt is returned by Verify when the block chain does not partition
// the buffer, and by VerifyLive when a held block is not a live allocation.
var ErrCorrupt = errors.New("freelist: corrupt block chain")

// Verify checks the allocator invariants: the state header is intact and
// the block chain covers the usable region in ascending order with no gaps
// and no overlaps.
func (a *Allocator) Verify() error {
	if a.buf == nil {
		return fmt.Errorf("%w: allocator closed", ErrCorrupt)
	}

	st := a.buf[a.state : a.state+StateHeaderSize]
	if binary.LittleEndian.Uint64(st[offMagic:]) != stateMagic {
		return fmt.Errorf("%w: bad state header magic", ErrCorrupt)
	}
	if c := binary.LittleEndian.Uint64(st[offCapacity:]); c != a.capacity {
		return fmt.Errorf("%w: state capacity %d, buffer %d", ErrCorrupt, c, a.capacity)
	}
	if h := a.head(); h != a.first {
		return fmt.Errorf("%w: head at %d, expected %d", ErrCorrupt, h, a.first)
	}

	limit := a.granules()
	expected := a.first
	for off, n := a.head(), uint(0); off != 0; off, n = a.blockNext(off), n+1 {
		if n > limit {
			return fmt.Errorf("%w: cycle in block chain", ErrCorrupt)
		}
		if off != expected {
			return fmt.Errorf("%w: block at %d, expected %d", ErrCorrupt, off, expected)
		}

		size := a.blockSize(off)
		if size < BlockHeaderSize || size > a.capacity-off {
			return fmt.Errorf("%w: block at %d has invalid size %d", ErrCorrupt, off, size)
		}
		if a.blockNext(off) != 0 && size%Alignment != 0 {
			return fmt.Errorf("%w: inner block at %d has unaligned size %d", ErrCorrupt, off, size)
		}

		expected = off + size
	}

	if expected != a.capacity {
		return fmt.Errorf("%w: chain ends at %d, buffer at %d", ErrCorrupt, expected, a.capacity)
	}
	return nil
}

// VerifyLive runs Verify and then matches live, the blocks the caller still
// holds, against the allocated blocks of the chain. A held block that is
// foreign, already free, not a payload start or held twice is reported as
// ErrCorrupt. Allocated blocks that nobody holds are returned as leaks, in
// address order. Empty entries in live are skipped.
func (a *Allocator) VerifyLive(live [][]byte) ([]Block, error) {
	if err := a.Verify(); err != nil {
		return nil, err
	}

	n := a.granules()
	allocated := bitset.New(n)
	a.Walk(func(b Block) bool {
		if !b.Free {
			allocated.Set(a.granule(b.Offset))
		}
		return true
	})

	held := bitset.New(n)
	for i, block := range live {
		if len(block) == 0 {
			continue
		}
		off, ok := a.headerOf(block)
		if !ok {
			return nil, fmt.Errorf("%w: held block %d does not belong to the allocator", ErrCorrupt, i)
		}
		g := a.granule(off)
		if !allocated.Test(g) {
			return nil, fmt.Errorf("%w: held block %d at %d is not allocated", ErrCorrupt, i, off)
		}
		if held.Test(g) {
			return nil, fmt.Errorf("%w: block at %d is held twice", ErrCorrupt, off)
		}
		if usable := a.blockSize(off) - BlockHeaderSize; uint64(len(block)) > usable {
			return nil, fmt.Errorf("%w: held block %d of %d bytes exceeds usable size %d", ErrCorrupt, i, len(block), usable)
		}
		held.Set(g)
	}

	var leaks []Block
	unheld := allocated.Difference(held)
	for g, ok := unheld.NextSet(0); ok; g, ok = unheld.NextSet(g + 1) {
		leaks = append(leaks, a.block(a.first+uint64(g)*Alignment))
	}
	return leaks, nil
}

// granules returns the number of Alignment-sized granules in the block
// region.
func (a *Allocator) granules() uint {
	return uint((a.capacity - a.first + Alignment - 1) / Alignment)
}

// granule returns the granule index of the block header at off.
func (a *Allocator) granule(off uint64) uint {
	return uint((off - a.first) / Alignment)
}
