package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOverflowSafe(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
		ok   bool
	}{
		{"zero", 0, 0, 0, true},
		{"small", 16, 32, 48, true},
		{"max plus zero", math.MaxUint64, 0, math.MaxUint64, true},
		{"max plus one", math.MaxUint64, 1, 0, false},
		{"half plus half", math.MaxUint64/2 + 1, math.MaxUint64/2 + 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AddOverflowSafe(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
		ok   bool
	}{
		{"zero operand", 0, math.MaxUint64, 0, true},
		{"capacity times size", 32, 8, 256, true},
		{"overflow", math.MaxUint64/2 + 1, 2, 0, false},
		{"large square", 1 << 32, 1 << 32, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MulOverflowSafe(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignUp(t *testing.T) {
	for _, tc := range []struct{ in, want uint64 }{
		{0, 0}, {1, 16}, {15, 16}, {16, 16}, {17, 32}, {40, 48},
	} {
		got, ok := AlignUp(tc.in, 16)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got, "AlignUp(%d)", tc.in)
	}

	_, ok := AlignUp(math.MaxUint64-3, 16)
	assert.False(t, ok)
}
