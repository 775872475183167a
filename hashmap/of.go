package hashmap

import (
	"unsafe"

	"github.com/hupe1980/xstd/alloc"
)

// Of is a typed view over a HashMap with string keys and values of type V.
//
// V must not contain Go pointers: values are stored in allocator memory that
// the garbage collector does not scan.
type Of[V any] struct {
	m *HashMap
}

// NewOf creates a map of V values with at least bucketHint buckets.
func NewOf[V any](a alloc.Allocator, bucketHint uint64, opts ...Option) (*Of[V], error) {
	var zero V
	m, err := New(a, uint64(unsafe.Sizeof(zero)), bucketHint, opts...)
	if err != nil {
		return nil, err
	}
	return &Of[V]{m: m}, nil
}

func bytesOf[V any](v *V) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v)) //nolint:gosec // unsafe is required for zero-copy views
}

// Set stores v under key.
func (o *Of[V]) Set(key string, v V) error {
	return o.m.SetString(key, bytesOf(&v))
}

// Get returns the value stored under key.
func (o *Of[V]) Get(key string) (V, error) {
	var v V
	err := o.m.GetString(key, bytesOf(&v))
	return v, err
}

// Ptr returns a pointer to the value stored under key, or nil if absent.
// The pointer stays valid until the key is removed or the map is freed.
func (o *Of[V]) Ptr(key string) *V {
	view, ok := o.m.Lookup([]byte(key))
	if !ok || len(view) == 0 {
		return nil
	}
	return (*V)(unsafe.Pointer(&view[0])) //nolint:gosec // unsafe is required for zero-copy views
}

// Contains reports whether key is present.
func (o *Of[V]) Contains(key string) bool {
	return o.m.Contains([]byte(key))
}

// Remove deletes key.
func (o *Of[V]) Remove(key string) error {
	return o.m.RemoveString(key)
}

// ForEach calls fn for every entry.
func (o *Of[V]) ForEach(fn func(key string, v *V)) {
	o.m.ForEach(func(key, value []byte) {
		var v *V
		if len(value) > 0 {
			v = (*V)(unsafe.Pointer(&value[0])) //nolint:gosec // unsafe is required for zero-copy views
		}
		fn(string(key), v)
	})
}

// Len returns the number of entries.
func (o *Of[V]) Len() uint64 {
	return o.m.Size()
}

// Free releases all entries.
func (o *Of[V]) Free() {
	o.m.Free()
}

// Map returns the underlying untyped map.
func (o *Of[V]) Map() *HashMap {
	return o.m
}
