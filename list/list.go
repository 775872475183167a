package list

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/internal/conv"
)

// MinCapacity is the smallest capacity a list ever holds, in elements.
const MinCapacity = 8

// PointerSize is the element size a list must have to store pointers.
const PointerSize = uint64(unsafe.Sizeof(uintptr(0)))

// List is a growable array of elemSize-byte elements.
//
// The list owns its backing block and releases it on Free. List is not safe
// for concurrent use.
type List struct {
	a        alloc.Allocator
	data     []byte
	elemSize uint64
	count    uint64
	capacity uint64
}

// New creates a list of elements of elemSize bytes with room for at least
// capacityHint elements.
func New(a alloc.Allocator, elemSize, capacityHint uint64) (*List, error) {
	if a == nil {
		return nil, fmt.Errorf("list: nil allocator: %w", alloc.ErrInvalidParameter)
	}
	if elemSize == 0 {
		return nil, fmt.Errorf("list: zero element size: %w", alloc.ErrInvalidParameter)
	}

	capacity := max(capacityHint, MinCapacity)
	n, ok := conv.MulOverflowSafe(capacity, elemSize)
	if !ok {
		return nil, fmt.Errorf("list: %d elements of %d bytes: %w", capacity, elemSize, alloc.ErrWouldOverflow)
	}

	data := a.Alloc(n)
	if data == nil {
		return nil, fmt.Errorf("list: allocating %d bytes: %w", n, alloc.ErrOutOfMemory)
	}

	return &List{
		a:        a,
		data:     data,
		elemSize: elemSize,
		capacity: capacity,
	}, nil
}

// slot returns the bytes of element i without checking the element count.
func (l *List) slot(i uint64) []byte {
	off := i * l.elemSize
	return l.data[off : off+l.elemSize : off+l.elemSize]
}

// resize reallocates the backing block for capacity elements. On failure
// the list is left untouched.
func (l *List) resize(capacity uint64) error {
	n, ok := conv.MulOverflowSafe(capacity, l.elemSize)
	if !ok {
		return fmt.Errorf("list: %d elements of %d bytes: %w", capacity, l.elemSize, alloc.ErrWouldOverflow)
	}

	data := l.a.Realloc(l.data, n)
	if data == nil {
		return fmt.Errorf("list: reallocating %d bytes: %w", n, alloc.ErrOutOfMemory)
	}

	l.data = data
	l.capacity = capacity
	return nil
}

func (l *List) grow() error {
	if l.capacity == 0 {
		return l.resize(MinCapacity)
	}
	capacity, ok := conv.MulOverflowSafe(l.capacity, 2)
	if !ok {
		return fmt.Errorf("list: doubling capacity %d: %w", l.capacity, alloc.ErrWouldOverflow)
	}
	return l.resize(capacity)
}

func (l *List) shouldShrink() bool {
	half := l.capacity / 2
	return half >= MinCapacity && l.count < half
}

// Push appends the first ElemSize bytes of item.
func (l *List) Push(item []byte) error {
	if uint64(len(item)) < l.elemSize {
		return fmt.Errorf("list: item of %d bytes, element size %d: %w", len(item), l.elemSize, alloc.ErrInvalidParameter)
	}

	if l.count == l.capacity {
		if err := l.grow(); err != nil {
			return err
		}
	}

	copy(l.slot(l.count), item)
	l.count++
	return nil
}

// PushPointer appends p to a list of pointer-sized elements.
//
// p must not point into Go-managed memory: the list storage is invisible to
// the garbage collector.
func (l *List) PushPointer(p unsafe.Pointer) error {
	if l.elemSize != PointerSize {
		return fmt.Errorf("list: element size %d cannot hold a pointer: %w", l.elemSize, alloc.ErrInvalidParameter)
	}

	if l.count == l.capacity {
		if err := l.grow(); err != nil {
			return err
		}
	}

	*l.pointerAt(l.count) = p
	l.count++
	return nil
}

func (l *List) pointerAt(i uint64) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Pointer(&l.slot(i)[0])) //nolint:gosec // unsafe is required to access raw pointers
}

// Pop removes the last element and copies it into out, which may be nil.
// The backing block is halved when occupancy drops under 50%.
func (l *List) Pop(out []byte) error {
	if l.count == 0 {
		return fmt.Errorf("list: pop from empty list: %w", alloc.ErrRangeError)
	}
	if out != nil && uint64(len(out)) < l.elemSize {
		return fmt.Errorf("list: out of %d bytes, element size %d: %w", len(out), l.elemSize, alloc.ErrInvalidParameter)
	}

	l.count--
	if out != nil {
		copy(out, l.slot(l.count))
	}

	if l.shouldShrink() {
		// A failed shrink keeps the larger block.
		_ = l.resize(l.capacity / 2)
	}
	return nil
}

// Get copies element i into out.
func (l *List) Get(i uint64, out []byte) error {
	if i >= l.count {
		return fmt.Errorf("list: index %d out of range [0, %d): %w", i, l.count, alloc.ErrRangeError)
	}
	if uint64(len(out)) < l.elemSize {
		return fmt.Errorf("list: out of %d bytes, element size %d: %w", len(out), l.elemSize, alloc.ErrInvalidParameter)
	}
	copy(out, l.slot(i))
	return nil
}

// GetUnsafe copies element i into out without checking the element count.
func (l *List) GetUnsafe(i uint64, out []byte) {
	copy(out, l.slot(i))
}

// Set overwrites element i with the first ElemSize bytes of item.
func (l *List) Set(i uint64, item []byte) error {
	if i >= l.count {
		return fmt.Errorf("list: index %d out of range [0, %d): %w", i, l.count, alloc.ErrRangeError)
	}
	if uint64(len(item)) < l.elemSize {
		return fmt.Errorf("list: item of %d bytes, element size %d: %w", len(item), l.elemSize, alloc.ErrInvalidParameter)
	}
	copy(l.slot(i), item)
	return nil
}

// SetUnsafe overwrites element i without checking the element count.
func (l *List) SetUnsafe(i uint64, item []byte) {
	copy(l.slot(i), item)
}

// GetRef returns a view of element i, or nil if i is out of range.
// The view is invalidated by any call that resizes the list.
func (l *List) GetRef(i uint64) []byte {
	if i >= l.count {
		return nil
	}
	return l.slot(i)
}

// GetRefUnsafe returns a view of element i without checking the element count.
func (l *List) GetRefUnsafe(i uint64) []byte {
	return l.slot(i)
}

// GetAsPointer returns the pointer stored in element i. It returns nil if
// the list does not hold pointer-sized elements or i is out of range.
func (l *List) GetAsPointer(i uint64) unsafe.Pointer {
	if l.elemSize != PointerSize || i >= l.count {
		return nil
	}
	return *l.pointerAt(i)
}

// FreeItems frees every pointer stored in the list through a and clears the
// slots. The element count is unchanged.
func (l *List) FreeItems(a alloc.Allocator) error {
	if a == nil {
		return fmt.Errorf("list: nil allocator: %w", alloc.ErrInvalidParameter)
	}
	if l.elemSize != PointerSize {
		return fmt.Errorf("list: element size %d does not hold pointers: %w", l.elemSize, alloc.ErrInvalidParameter)
	}

	for i := range l.count {
		slot := l.pointerAt(i)
		if *slot != nil {
			alloc.FreePointer(a, *slot)
			*slot = nil
		}
	}
	return nil
}

// Clear removes every element and shrinks the backing block to
// MinCapacity elements. If the shrink fails the larger block is kept.
func (l *List) Clear() {
	l.count = 0
	if l.capacity != MinCapacity {
		_ = l.resize(MinCapacity)
	}
}

// ClearNoFree removes every element and keeps the backing block.
func (l *List) ClearNoFree() {
	l.count = 0
}

// ForEach calls fn for every element in index order. fn may modify the
// element in place but must not resize the list.
func (l *List) ForEach(fn func(item []byte, index uint64)) {
	for i := range l.count {
		fn(l.slot(i), i)
	}
}

// Size returns the number of elements.
func (l *List) Size() uint64 {
	return l.count
}

// Cap returns the capacity in elements.
func (l *List) Cap() uint64 {
	return l.capacity
}

// ElemSize returns the element size in bytes.
func (l *List) ElemSize() uint64 {
	return l.elemSize
}

// Free releases the backing block. The list is empty afterwards; a later
// Push allocates a fresh block.
func (l *List) Free() {
	if l.data != nil {
		l.a.Free(l.data)
	}
	l.data = nil
	l.count = 0
	l.capacity = 0
}
