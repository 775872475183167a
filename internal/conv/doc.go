// Package conv provides safe integer conversion and overflow-checked
// arithmetic for allocator size computations.
//
// Every size, offset and capacity computation in the allocators and
// containers goes through these helpers so that a request that cannot be
// represented fails with an error instead of wrapping around.
//
// Use cases:
//   - Converting caller-supplied uint64 sizes to int for slicing
//   - capacity * elementSize and offset + size bound checks
//   - Rounding offsets up to an alignment boundary
//
// For conversions that are provably safe by domain constraints (e.g. loop
// indices, values already bounded by a slice length), use direct casts.
package conv
