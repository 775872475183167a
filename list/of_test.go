package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xstd/alloc"
)

type point struct {
	X, Y int32
	Tag  uint16
}

func TestOf(t *testing.T) {
	l, err := NewOf[point](newHeap(t), 0)
	require.NoError(t, err)
	defer l.Free()

	for i := range int32(40) {
		require.NoError(t, l.Push(point{X: i, Y: -i, Tag: uint16(i)}))
	}
	assert.Equal(t, uint64(40), l.Len())
	assert.Equal(t, uint64(64), l.Cap())

	p, err := l.Get(7)
	require.NoError(t, err)
	assert.Equal(t, point{X: 7, Y: -7, Tag: 7}, p)

	require.NoError(t, l.Set(7, point{X: 70}))
	assert.Equal(t, int32(70), l.At(7).X)
	assert.Nil(t, l.At(40))

	l.At(8).Y = 800
	p, err = l.Get(8)
	require.NoError(t, err)
	assert.Equal(t, int32(800), p.Y)

	var sum int32
	l.ForEach(func(_ uint64, v *point) {
		sum += v.X
	})
	assert.Equal(t, int32(39*40/2-7+70), sum)

	last, err := l.Pop()
	require.NoError(t, err)
	assert.Equal(t, int32(39), last.X)

	l.Clear()
	assert.Zero(t, l.Len())
	_, err = l.Pop()
	assert.ErrorIs(t, err, alloc.ErrRangeError)

	_, err = l.Get(0)
	assert.ErrorIs(t, err, alloc.ErrRangeError)
	assert.Equal(t, uint64(12), l.List().ElemSize())
}

func TestOfZeroSize(t *testing.T) {
	_, err := NewOf[struct{}](newHeap(t), 0)
	assert.ErrorIs(t, err, alloc.ErrInvalidParameter)
}
