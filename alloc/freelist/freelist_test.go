package freelist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/testutil"
)

func newTestAllocator(t *testing.T, size int) *Allocator {
	t.Helper()
	a, err := New(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, a.Verify())
	return a
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func TestNew(t *testing.T) {
	t.Run("nil buffer", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, alloc.ErrInvalidParameter)
	})

	t.Run("too small", func(t *testing.T) {
		_, err := New(make([]byte, StateHeaderSize))
		assert.ErrorIs(t, err, alloc.ErrInvalidParameter)
	})

	t.Run("room for one minimum block", func(t *testing.T) {
		_, err := NewSized(StateHeaderSize + BlockHeaderSize)
		assert.ErrorIs(t, err, alloc.ErrInvalidParameter)

		a, err := NewSized(StateHeaderSize + BlockHeaderSize + Alignment)
		require.NoError(t, err)
		assert.Equal(t, uint64(Alignment), a.Stats().LargestFree)
		assert.NotNil(t, a.Alloc(Alignment))
	})

	t.Run("single free block", func(t *testing.T) {
		a := newTestAllocator(t, 4096)
		s := a.Stats()
		assert.Equal(t, 1, s.Blocks)
		assert.Equal(t, 1, s.FreeBlocks)
		assert.Zero(t, s.UsedBytes)
		assert.Equal(t, s.FreeBytes, s.LargestFree)
	})
}

// Freeing two adjacent blocks merges them so a larger request fits at the
// first block's address.
func TestFreeCoalescesAdjacentBlocks(t *testing.T) {
	a := newTestAllocator(t, 4096)

	blockA := a.Alloc(64)
	blockB := a.Alloc(64)
	blockC := a.Alloc(64)
	require.NotNil(t, blockA)
	require.NotNil(t, blockB)
	require.NotNil(t, blockC)

	a.Free(blockB)
	a.Free(blockA)
	require.NoError(t, a.Verify())

	merged := a.Alloc(160)
	require.NotNil(t, merged)
	assert.Equal(t, alloc.Addr(blockA), alloc.Addr(merged))
	require.NoError(t, a.Verify())
}

func TestAlloc(t *testing.T) {
	t.Run("zero and huge", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		assert.Nil(t, a.Alloc(0))
		assert.Nil(t, a.Alloc(4096))
		assert.NotPanics(t, func() {
			assert.Nil(t, a.Alloc(math.MaxUint64))
		})
	})

	t.Run("aligned and disjoint", func(t *testing.T) {
		a := newTestAllocator(t, 8192)
		var blocks [][]byte
		for i, size := range []uint64{1, 7, 16, 17, 100, 33, 64} {
			b := a.Alloc(size)
			require.NotNil(t, b)
			require.Len(t, b, int(size))
			assert.Zero(t, alloc.Addr(b)%Alignment)
			fill(b, byte(i+1))
			blocks = append(blocks, b)
		}
		for i, b := range blocks {
			for _, v := range b {
				require.Equal(t, byte(i+1), v, "block %d was overwritten", i)
			}
		}
		require.NoError(t, a.Verify())
	})

	t.Run("no split for small leftover", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		first := a.Stats().LargestFree

		// leftover of exactly minSplit bytes stays attached
		b := a.Alloc(first - minSplit)
		require.NotNil(t, b)
		s := a.Stats()
		assert.Equal(t, 1, s.Blocks)
		assert.Equal(t, first, a.UsableSize(b))
	})

	t.Run("exhaust", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		n := 0
		for a.Alloc(16) != nil {
			n++
		}
		assert.Positive(t, n)
		assert.Zero(t, a.Stats().FreeBlocks)
		require.NoError(t, a.Verify())
	})
}

func TestFreeCoalescesInAnyOrder(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	rng := testutil.NewRNG(99)
	for range 8 {
		orders = append(orders, rng.Perm(4))
	}

	for _, order := range orders {
		a := newTestAllocator(t, 4096)
		initial := a.Stats()

		blocks := make([][]byte, 4)
		for i := range blocks {
			blocks[i] = a.Alloc(uint64(32 * (i + 1)))
			require.NotNil(t, blocks[i])
		}
		for _, i := range order {
			a.Free(blocks[i])
			require.NoError(t, a.Verify())
		}

		s := a.Stats()
		assert.Equal(t, 1, s.Blocks, "order %v", order)
		assert.Equal(t, initial.LargestFree, s.LargestFree, "order %v", order)
	}
}

func TestFreeIgnoresForeignBlocks(t *testing.T) {
	a := newTestAllocator(t, 1024)
	b := a.Alloc(32)
	before := a.Stats()

	a.Free(nil)
	a.Free(make([]byte, 32))
	a.Free(b[1:]) // not a payload start

	assert.Equal(t, before, a.Stats())
	require.NoError(t, a.Verify())
}

func TestRealloc(t *testing.T) {
	t.Run("nil block allocates", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		assert.Len(t, a.Realloc(nil, 24), 24)
	})

	t.Run("zero size frees", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		b := a.Alloc(24)
		assert.Nil(t, a.Realloc(b, 0))
		assert.Equal(t, 1, a.Stats().Blocks)
	})

	t.Run("fits in place", func(t *testing.T) {
		a := newTestAllocator(t, 1024)
		b := a.Alloc(20) // usable 32
		fill(b, 0xAB)

		grown := a.Realloc(b, 32)
		require.Len(t, grown, 32)
		assert.Equal(t, alloc.Addr(b), alloc.Addr(grown))

		shrunk := a.Realloc(grown, 4)
		require.Len(t, shrunk, 4)
		assert.Equal(t, alloc.Addr(b), alloc.Addr(shrunk))
	})

	t.Run("moves and preserves data", func(t *testing.T) {
		a := newTestAllocator(t, 4096)
		b := a.Alloc(32)
		fill(b, 0x5A)
		guard := a.Alloc(16)
		require.NotNil(t, guard)

		moved := a.Realloc(b, 256)
		require.Len(t, moved, 256)
		assert.NotEqual(t, alloc.Addr(b), alloc.Addr(moved))
		for _, v := range moved[:32] {
			require.Equal(t, byte(0x5A), v)
		}
		require.NoError(t, a.Verify())
	})

	t.Run("failure keeps old block", func(t *testing.T) {
		a := newTestAllocator(t, 512)
		b := a.Alloc(64)
		fill(b, 0x11)
		a.Alloc(16)

		assert.Nil(t, a.Realloc(b, 4096))
		for _, v := range b {
			require.Equal(t, byte(0x11), v)
		}
		assert.Equal(t, uint64(64), a.UsableSize(b))
		require.NoError(t, a.Verify())
	})

	t.Run("foreign block", func(t *testing.T) {
		a := newTestAllocator(t, 512)
		assert.Nil(t, a.Realloc(make([]byte, 8), 16))
	})
}

func TestWalk(t *testing.T) {
	a := newTestAllocator(t, 2048)
	a.Alloc(16)
	b := a.Alloc(48)
	a.Alloc(16)
	a.Free(b)

	var blocks []Block
	a.Walk(func(blk Block) bool {
		blocks = append(blocks, blk)
		return true
	})

	require.Len(t, blocks, 4)
	assert.False(t, blocks[0].Free)
	assert.True(t, blocks[1].Free)
	assert.Equal(t, uint64(48), blocks[1].Usable())
	assert.False(t, blocks[2].Free)
	assert.True(t, blocks[3].Free)
	for i := 1; i < len(blocks); i++ {
		assert.Equal(t, blocks[i-1].Offset+blocks[i-1].Size, blocks[i].Offset)
	}

	n := 0
	a.Walk(func(Block) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestVerifyDetectsCorruption(t *testing.T) {
	a := newTestAllocator(t, 1024)
	b := a.Alloc(32)
	a.Alloc(32)

	off, ok := a.headerOf(b)
	require.True(t, ok)
	a.setBlockSize(off, a.blockSize(off)+16)

	assert.ErrorIs(t, a.Verify(), ErrCorrupt)
}

func TestLargestFreeOnPartialGranule(t *testing.T) {
	a, err := NewSized(1024 + 8)
	require.NoError(t, err)

	s := a.Stats()
	assert.Equal(t, uint64(1024+8-StateHeaderSize-BlockHeaderSize), s.FreeBytes)
	assert.Equal(t, uint64(1024-StateHeaderSize-BlockHeaderSize), s.LargestFree)

	assert.Nil(t, a.Alloc(s.LargestFree+1))
	assert.NotNil(t, a.Alloc(s.LargestFree))
	require.NoError(t, a.Verify())
}

func TestVerifyLive(t *testing.T) {
	newBlocks := func(t *testing.T) (*Allocator, [][]byte) {
		t.Helper()
		a := newTestAllocator(t, 4096)
		blocks := make([][]byte, 4)
		for i := range blocks {
			blocks[i] = a.Alloc(64)
			require.NotNil(t, blocks[i])
		}
		return a, blocks
	}

	t.Run("all held", func(t *testing.T) {
		a, blocks := newBlocks(t)
		leaks, err := a.VerifyLive(append(blocks, nil))
		require.NoError(t, err)
		assert.Empty(t, leaks)
	})

	t.Run("unheld blocks are leaks", func(t *testing.T) {
		a, blocks := newBlocks(t)
		leaks, err := a.VerifyLive([][]byte{blocks[0], blocks[2]})
		require.NoError(t, err)
		require.Len(t, leaks, 2)

		for i, idx := range []int{1, 3} {
			off, ok := a.headerOf(blocks[idx])
			require.True(t, ok)
			assert.Equal(t, off, leaks[i].Offset)
			assert.False(t, leaks[i].Free)
		}
	})

	t.Run("block held twice", func(t *testing.T) {
		a, blocks := newBlocks(t)
		_, err := a.VerifyLive([][]byte{blocks[0], blocks[1], blocks[0]})
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("freed block still held", func(t *testing.T) {
		a, blocks := newBlocks(t)
		a.Free(blocks[3])
		_, err := a.VerifyLive(blocks)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("interior pointer", func(t *testing.T) {
		a, blocks := newBlocks(t)
		_, err := a.VerifyLive([][]byte{blocks[0][Alignment:]})
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("foreign block", func(t *testing.T) {
		a, _ := newBlocks(t)
		_, err := a.VerifyLive([][]byte{make([]byte, 16)})
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("oversized view", func(t *testing.T) {
		a, blocks := newBlocks(t)
		_, err := a.VerifyLive([][]byte{blocks[0][:cap(blocks[0])]})
		require.NoError(t, err)

		wide := a.buf[a.first+BlockHeaderSize : a.first+BlockHeaderSize+128]
		_, err = a.VerifyLive([][]byte{wide})
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestRandomWorkload(t *testing.T) {
	rng := testutil.NewRNG(4711)
	a := newTestAllocator(t, 64*1024)

	type live struct {
		block []byte
		tag   byte
	}
	var blocks []live

	for i := range 2000 {
		if len(blocks) > 0 && rng.Intn(3) == 0 {
			j := rng.Intn(len(blocks))
			for _, v := range blocks[j].block {
				require.Equal(t, blocks[j].tag, v)
			}
			a.Free(blocks[j].block)
			blocks = append(blocks[:j], blocks[j+1:]...)
		} else if b := a.Alloc(rng.Size(1, 512)); b != nil {
			tag := byte(i)
			fill(b, tag)
			blocks = append(blocks, live{block: b, tag: tag})
		}
		if i%100 == 0 {
			held := make([][]byte, len(blocks))
			for k, l := range blocks {
				held[k] = l.block
			}
			leaks, err := a.VerifyLive(held)
			require.NoError(t, err)
			require.Empty(t, leaks)
		}
	}

	for _, l := range blocks {
		a.Free(l.block)
	}
	require.NoError(t, a.Verify())
	assert.Equal(t, 1, a.Stats().Blocks)
}

func BenchmarkAllocFree(b *testing.B) {
	a, err := New(make([]byte, 1<<20))
	if err != nil {
		b.Fatal(err)
	}

	blocks := make([][]byte, 64)
	b.ReportAllocs()
	for b.Loop() {
		for i := range blocks {
			blocks[i] = a.Alloc(uint64(16 + i*8))
		}
		for i := len(blocks) - 1; i >= 0; i-- {
			a.Free(blocks[i])
		}
	}
}

func TestNewSized(t *testing.T) {
	a, err := NewSized(1024)
	require.NoError(t, err)
	require.NoError(t, a.Verify())

	// aligned buffer: state header and one block header are the only overhead
	assert.Equal(t, uint64(1024-StateHeaderSize-BlockHeaderSize), a.Stats().LargestFree)

	_, err = NewSized(-1)
	assert.ErrorIs(t, err, alloc.ErrInvalidParameter)
}
