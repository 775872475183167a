// Package freelist implements a general purpose allocator over a single
// caller-supplied buffer.
//
// The buffer is partitioned into a chain of blocks in ascending address
// order. Each block starts with a 32-byte header (size, next, free flag)
// followed by its payload. All bookkeeping lives inside the buffer itself:
//
//	| pad | state header | hdr | payload | hdr | payload | ... |
//
// Allocation is first fit with splitting. Freeing marks the block and
// coalesces address-adjacent free blocks in one forward sweep.
//
// # Introspection
//
// Stats, Walk and Verify expose the block chain for tests and diagnostics.
// Verify checks that the chain partitions the usable region with no gaps
// and no overlaps.
package freelist
