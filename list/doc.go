// Package list implements a growable array of fixed-size elements whose
// storage comes from an alloc.Allocator.
//
// Elements are opaque byte records of a size fixed at construction. The
// backing block doubles when full and halves when occupancy drops under
// 50%, never going below MinCapacity elements.
//
//	l, err := list.New(heap, 8, 16)
//	if err != nil {
//		return err
//	}
//	defer l.Free()
//	_ = l.Push(item)
//
// Of[T] is a typed view for pointer-free element types.
//
// # Unchecked access
//
// GetUnsafe, SetUnsafe and GetRefUnsafe skip the element count check. The
// caller guarantees that the index refers to a live element.
package list
