package list

import (
	"unsafe"

	"github.com/hupe1980/xstd/alloc"
)

// Of is a typed view over a List of T.
//
// T must not contain Go pointers (no pointers, slices, strings, maps,
// interfaces or channels): the list storage is invisible to the garbage
// collector.
type Of[T any] struct {
	l *List
}

// NewOf creates a list of T with room for at least capacityHint elements.
func NewOf[T any](a alloc.Allocator, capacityHint uint64) (*Of[T], error) {
	var zero T
	l, err := New(a, uint64(unsafe.Sizeof(zero)), capacityHint)
	if err != nil {
		return nil, err
	}
	return &Of[T]{l: l}, nil
}

func bytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v)) //nolint:gosec // unsafe is required for zero-copy views
}

// Push appends v.
func (o *Of[T]) Push(v T) error {
	return o.l.Push(bytesOf(&v))
}

// Pop removes and returns the last element.
func (o *Of[T]) Pop() (T, error) {
	var v T
	err := o.l.Pop(bytesOf(&v))
	return v, err
}

// Get returns element i.
func (o *Of[T]) Get(i uint64) (T, error) {
	var v T
	err := o.l.Get(i, bytesOf(&v))
	return v, err
}

// Set overwrites element i.
func (o *Of[T]) Set(i uint64, v T) error {
	return o.l.Set(i, bytesOf(&v))
}

// At returns a pointer to element i, or nil if i is out of range.
// The pointer is invalidated by any call that resizes the list.
func (o *Of[T]) At(i uint64) *T {
	ref := o.l.GetRef(i)
	if ref == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&ref[0])) //nolint:gosec // unsafe is required for zero-copy views
}

// ForEach calls fn for every element in index order.
func (o *Of[T]) ForEach(fn func(index uint64, v *T)) {
	o.l.ForEach(func(item []byte, index uint64) {
		fn(index, (*T)(unsafe.Pointer(&item[0]))) //nolint:gosec // unsafe is required for zero-copy views
	})
}

// Len returns the number of elements.
func (o *Of[T]) Len() uint64 {
	return o.l.Size()
}

// Cap returns the capacity in elements.
func (o *Of[T]) Cap() uint64 {
	return o.l.Cap()
}

// Clear removes every element and shrinks the backing block.
func (o *Of[T]) Clear() {
	o.l.Clear()
}

// Free releases the backing block.
func (o *Of[T]) Free() {
	o.l.Free()
}

// List returns the underlying untyped list.
func (o *Of[T]) List() *List {
	return o.l
}
