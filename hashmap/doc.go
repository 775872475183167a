// Package hashmap implements a separately chained hash map whose buckets,
// entries, keys and values all live in memory obtained from an
// alloc.Allocator.
//
// Keys are arbitrary byte sequences, copied on insertion. Values are
// fixed-size byte records; a map created with value size 0 behaves as a
// set. The bucket array doubles whenever an insertion would push the load
// factor over 3/4.
//
//	m, err := hashmap.New(heap, 8, 0)
//	if err != nil {
//		return err
//	}
//	defer m.Free()
//	_ = m.SetString("answer", value)
//
// # Hashing
//
// Keys are hashed with FNV-1a by default (64-bit on 64-bit platforms, 32-bit
// otherwise). WithHasher installs another function such as XXHash64.
//
// # Memory
//
// Entry nodes and the bucket array hold raw pointers into allocator memory.
// The allocator must hand out blocks that stay at a fixed address until
// freed, which every allocator in this module does.
package hashmap
