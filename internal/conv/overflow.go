package conv

import "math/bits"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uint64.
func AddOverflowSafe(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow uint64.
// This is what guards count * elementSize calculations in the containers.
func MulOverflowSafe(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// AlignUp rounds v up to the next multiple of align, which must be a power of two.
// ok is false when the rounded value does not fit in uint64.
func AlignUp(v, align uint64) (uint64, bool) {
	mask := align - 1
	sum, ok := AddOverflowSafe(v, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}
