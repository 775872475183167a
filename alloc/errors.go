package alloc

import "errors"

var (
	// ErrInvalidParameter indicates a nil, zero or malformed argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfMemory indicates that a backing allocation failed.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrWouldOverflow indicates that a size or capacity computation would exceed uint64.
	ErrWouldOverflow = errors.New("would overflow")

	// ErrRangeError indicates an index out of bounds or a missing key.
	ErrRangeError = errors.New("range error")
)
