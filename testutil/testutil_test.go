package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xstd/alloc"
)

func TestKeys(t *testing.T) {
	rng := NewRNG(4711)

	keys := rng.Keys(200, 2, 16)
	require.Len(t, keys, 200)

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		assert.GreaterOrEqual(t, len(k), 2)
		assert.LessOrEqual(t, len(k), 16)
		assert.False(t, seen[string(k)], "duplicate key %x", k)
		seen[string(k)] = true
	}
}

func TestSize(t *testing.T) {
	rng := NewRNG(4711)

	for range 1000 {
		s := rng.Size(8, 64)
		assert.GreaterOrEqual(t, s, uint64(8))
		assert.LessOrEqual(t, s, uint64(64))
	}

	assert.Equal(t, uint64(5), rng.Size(5, 5))
	assert.Equal(t, uint64(5), rng.Size(5, 1))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	k1 := rng.Key(8, 8)

	rng.Reset()
	k2 := rng.Key(8, 8)

	assert.True(t, bytes.Equal(k1, k2))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)

	counts := make([]int, 10)
	for range 2000 {
		counts[rng.Zipf(10, 1.5)]++
	}

	assert.Greater(t, counts[0], counts[9])
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestFailingAllocator(t *testing.T) {
	heap := alloc.NewHeap()
	defer heap.Close()

	f := NewFailingAllocator(heap, 2)

	b1 := f.Alloc(16)
	require.NotNil(t, b1)
	b2 := f.Realloc(b1, 32)
	require.NotNil(t, b2)

	assert.Nil(t, f.Alloc(16))
	assert.Nil(t, f.Realloc(b2, 64))
	assert.Equal(t, 2, f.Failures())

	assert.Nil(t, f.Realloc(b2, 0), "shrinking to zero always frees")

	f.SetRemaining(1)
	b3 := f.Alloc(8)
	require.NotNil(t, b3)
	f.Free(b3)
}
