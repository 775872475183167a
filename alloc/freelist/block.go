package freelist

import "encoding/binary"

const (
	// Alignment is the alignment of every payload returned by the allocator.
	Alignment = 16

	// BlockHeaderSize is the size of the header preceding each payload.
	BlockHeaderSize = 32

	// StateHeaderSize is the size of the state header at the aligned start
	// of the buffer.
	StateHeaderSize = 32

	// minSplit is the smallest leftover, header excluded, worth splitting off.
	minSplit = BlockHeaderSize + 16

	stateMagic = 0x54534c4545524658 // "XFREELST"

	// Block header layout.
	offSize = 0
	offNext = 8
	offFree = 16

	// State header layout.
	offMagic    = 0
	offCapacity = 8
	offHead     = 16
)

// Block describes one block of the chain.
type Block struct {
	// Offset of the block header from the start of the buffer.
	Offset uint64
	// Size of the block, header included.
	Size uint64
	// Free reports whether the block is available.
	Free bool
}

// Usable returns the payload size of the block.
func (b Block) Usable() uint64 {
	return b.Size - BlockHeaderSize
}

func (a *Allocator) blockSize(off uint64) uint64 {
	return binary.LittleEndian.Uint64(a.buf[off+offSize:])
}

func (a *Allocator) setBlockSize(off, size uint64) {
	binary.LittleEndian.PutUint64(a.buf[off+offSize:], size)
}

// blockNext returns the offset of the next block, 0 for end of chain.
func (a *Allocator) blockNext(off uint64) uint64 {
	return binary.LittleEndian.Uint64(a.buf[off+offNext:])
}

func (a *Allocator) setBlockNext(off, next uint64) {
	binary.LittleEndian.PutUint64(a.buf[off+offNext:], next)
}

func (a *Allocator) blockFree(off uint64) bool {
	return a.buf[off+offFree] != 0
}

func (a *Allocator) setBlockFree(off uint64, free bool) {
	if free {
		a.buf[off+offFree] = 1
	} else {
		a.buf[off+offFree] = 0
	}
}

func (a *Allocator) writeBlock(off, size, next uint64, free bool) {
	clear(a.buf[off : off+BlockHeaderSize])
	a.setBlockSize(off, size)
	a.setBlockNext(off, next)
	a.setBlockFree(off, free)
}

func (a *Allocator) block(off uint64) Block {
	return Block{Offset: off, Size: a.blockSize(off), Free: a.blockFree(off)}
}

func (a *Allocator) head() uint64 {
	return binary.LittleEndian.Uint64(a.buf[a.state+offHead:])
}
