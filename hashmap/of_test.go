package hashmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xstd/alloc"
)

type counter struct {
	Hits  uint64
	Bytes uint32
}

func TestOf(t *testing.T) {
	m, err := NewOf[counter](newTracked(t), 0)
	require.NoError(t, err)
	defer m.Free()

	require.NoError(t, m.Set("GET /", counter{Hits: 1, Bytes: 100}))
	require.NoError(t, m.Set("POST /", counter{Hits: 2}))
	assert.Equal(t, uint64(2), m.Len())
	assert.Equal(t, uint64(16), m.Map().ValueSize())

	c, err := m.Get("GET /")
	require.NoError(t, err)
	assert.Equal(t, counter{Hits: 1, Bytes: 100}, c)

	p := m.Ptr("POST /")
	require.NotNil(t, p)
	p.Hits += 40
	c, err = m.Get("POST /")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.Hits)

	assert.Nil(t, m.Ptr("PUT /"))
	assert.True(t, m.Contains("GET /"))

	total := uint64(0)
	m.ForEach(func(_ string, v *counter) {
		total += v.Hits
	})
	assert.Equal(t, uint64(43), total)

	require.NoError(t, m.Remove("GET /"))
	_, err = m.Get("GET /")
	assert.ErrorIs(t, err, alloc.ErrRangeError)
}

func TestOfSet(t *testing.T) {
	m, err := NewOf[struct{}](newTracked(t), 0, WithHasher(XXHash64))
	require.NoError(t, err)
	defer m.Free()

	require.NoError(t, m.Set("a", struct{}{}))
	assert.True(t, m.Contains("a"))
	assert.Nil(t, m.Ptr("a"))

	m.ForEach(func(key string, v *struct{}) {
		assert.Equal(t, "a", key)
		assert.Nil(t, v)
	})
}
