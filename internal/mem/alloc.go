package mem

import (
	"unsafe"
)

// DefaultAlignment matches the block alignment of the buffer allocators.
const DefaultAlignment = 16

// AllocAligned allocates a byte slice of the given size whose first byte is
// aligned to align, which must be a power of two. It returns nil for
// non-positive sizes or an invalid alignment.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil
	}

	buf := make([]byte, size+align-1)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(align - 1)
	offset := (uintptr(align) - (addr & mask)) & mask

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}
