package hashmap

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/internal/conv"
)

const (
	// MinBuckets is the smallest bucket count a map is created with.
	MinBuckets = 32

	loadFactorNum = 3
	loadFactorDen = 4
)

// node is an entry record. Nodes are allocated from the map's allocator and
// overlaid on the returned block.
type node struct {
	hash   uint64
	key    unsafe.Pointer // never nil, one sentinel byte for empty keys
	keyLen uint64
	value  unsafe.Pointer // nil for sets
	next   *node
}

const nodeSize = uint64(unsafe.Sizeof(node{}))

const ptrSize = uint64(unsafe.Sizeof(uintptr(0)))

// HashMap maps byte keys to fixed-size values.
//
// HashMap is not safe for concurrent use.
type HashMap struct {
	a         alloc.Allocator
	buckets   []*node // backed by allocator memory
	raw       []byte  // the block behind buckets
	size      uint64
	valueSize uint64
	hash      HashFunc
}

// New creates a map of valueSize-byte values with at least bucketHint
// buckets. A valueSize of 0 creates a set.
func New(a alloc.Allocator, valueSize, bucketHint uint64, opts ...Option) (*HashMap, error) {
	if a == nil {
		return nil, fmt.Errorf("hashmap: nil allocator: %w", alloc.ErrInvalidParameter)
	}

	o := options{hash: defaultHash()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &HashMap{
		a:         a,
		valueSize: valueSize,
		hash:      o.hash,
	}

	raw, buckets, err := m.allocBuckets(max(bucketHint, MinBuckets))
	if err != nil {
		return nil, err
	}
	m.raw, m.buckets = raw, buckets
	return m, nil
}

func (m *HashMap) allocBuckets(count uint64) ([]byte, []*node, error) {
	n, ok := conv.MulOverflowSafe(count, ptrSize)
	if !ok {
		return nil, nil, fmt.Errorf("hashmap: %d buckets: %w", count, alloc.ErrWouldOverflow)
	}
	c, err := conv.Uint64ToInt(count)
	if err != nil {
		return nil, nil, fmt.Errorf("hashmap: %d buckets: %w: %w", count, alloc.ErrWouldOverflow, err)
	}

	raw := m.a.Alloc(n)
	if raw == nil {
		return nil, nil, fmt.Errorf("hashmap: allocating %d buckets: %w", count, alloc.ErrOutOfMemory)
	}
	clear(raw)

	buckets := unsafe.Slice((**node)(unsafe.Pointer(&raw[0])), c) //nolint:gosec // unsafe is required to overlay the bucket array
	return raw, buckets, nil
}

func (m *HashMap) newNode() *node {
	block := m.a.Alloc(nodeSize)
	if block == nil {
		return nil
	}
	clear(block)
	return (*node)(unsafe.Pointer(&block[0])) //nolint:gosec // unsafe is required to overlay entry nodes
}

func (m *HashMap) freeNode(n *node) {
	alloc.FreePointer(m.a, n.key)
	alloc.FreePointer(m.a, n.value)
	alloc.FreePointer(m.a, unsafe.Pointer(n))
}

func (n *node) keyBytes() []byte {
	if n.keyLen == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(n.key), n.keyLen)
}

func (m *HashMap) valueBytes(n *node) []byte {
	if n.value == nil {
		return nil
	}
	return unsafe.Slice((*byte)(n.value), m.valueSize)
}

func (m *HashMap) bucketIndex(hash uint64) uint64 {
	return hash % uint64(len(m.buckets))
}

func (m *HashMap) find(key []byte, hash uint64) (*node, **node) {
	link := &m.buckets[m.bucketIndex(hash)]
	for n := *link; n != nil; n = *link {
		if n.hash == hash && bytes.Equal(n.keyBytes(), key) {
			return n, link
		}
		link = &n.next
	}
	return nil, nil
}

func (m *HashMap) checkValue(value []byte) error {
	if m.valueSize > 0 && uint64(len(value)) < m.valueSize {
		return fmt.Errorf("hashmap: value of %d bytes, value size %d: %w", len(value), m.valueSize, alloc.ErrInvalidParameter)
	}
	return nil
}

// rehash moves every entry into a bucket array of count buckets, using the
// stored hashes. On failure the map is unchanged.
func (m *HashMap) rehash(count uint64) error {
	raw, buckets, err := m.allocBuckets(count)
	if err != nil {
		return err
	}

	for _, n := range m.buckets {
		for n != nil {
			next := n.next
			idx := n.hash % count
			n.next = buckets[idx]
			buckets[idx] = n
			n = next
		}
	}

	m.a.Free(m.raw)
	m.raw, m.buckets = raw, buckets
	return nil
}

func (m *HashMap) growIfNeeded() error {
	count := uint64(len(m.buckets))
	need, ok := conv.MulOverflowSafe(m.size+1, loadFactorDen)
	if !ok {
		return fmt.Errorf("hashmap: %d entries: %w", m.size, alloc.ErrWouldOverflow)
	}
	limit, ok := conv.MulOverflowSafe(count, loadFactorNum)
	if !ok || need <= limit {
		return nil
	}

	doubled, ok := conv.MulOverflowSafe(count, 2)
	if !ok {
		return fmt.Errorf("hashmap: doubling %d buckets: %w", count, alloc.ErrWouldOverflow)
	}
	return m.rehash(doubled)
}

// Set inserts key or overwrites its value. value must hold at least
// ValueSize bytes; it is ignored for sets.
func (m *HashMap) Set(key, value []byte) error {
	if m.buckets == nil {
		return fmt.Errorf("hashmap: map is freed: %w", alloc.ErrInvalidParameter)
	}
	if err := m.checkValue(value); err != nil {
		return err
	}
	if err := m.growIfNeeded(); err != nil {
		return err
	}

	hash := m.hash(key)
	if n, _ := m.find(key, hash); n != nil {
		if m.valueSize > 0 {
			if n.value == nil {
				v := m.a.Alloc(m.valueSize)
				if v == nil {
					return fmt.Errorf("hashmap: allocating value: %w", alloc.ErrOutOfMemory)
				}
				n.value = unsafe.Pointer(&v[0])
			}
			copy(m.valueBytes(n), value)
		}
		return nil
	}

	return m.insert(key, value, hash)
}

func (m *HashMap) insert(key, value []byte, hash uint64) error {
	n := m.newNode()
	if n == nil {
		return fmt.Errorf("hashmap: allocating entry: %w", alloc.ErrOutOfMemory)
	}

	keyLen := uint64(len(key))
	k := m.a.Alloc(max(keyLen, 1))
	if k == nil {
		alloc.FreePointer(m.a, unsafe.Pointer(n))
		return fmt.Errorf("hashmap: allocating %d byte key: %w", keyLen, alloc.ErrOutOfMemory)
	}
	if keyLen == 0 {
		k[0] = 0
	} else {
		copy(k, key)
	}
	n.key = unsafe.Pointer(&k[0])
	n.keyLen = keyLen
	n.hash = hash

	if m.valueSize > 0 {
		v := m.a.Alloc(m.valueSize)
		if v == nil {
			m.a.Free(k)
			alloc.FreePointer(m.a, unsafe.Pointer(n))
			return fmt.Errorf("hashmap: allocating value: %w", alloc.ErrOutOfMemory)
		}
		copy(v, value)
		n.value = unsafe.Pointer(&v[0])
	}

	idx := m.bucketIndex(hash)
	n.next = m.buckets[idx]
	m.buckets[idx] = n
	m.size++
	return nil
}

// Get copies the value stored for key into out. out may be nil to only test
// for presence. Returns alloc.ErrRangeError if key is absent.
func (m *HashMap) Get(key, out []byte) error {
	if m.buckets == nil {
		return fmt.Errorf("hashmap: map is freed: %w", alloc.ErrInvalidParameter)
	}
	if out != nil {
		if err := m.checkValue(out); err != nil {
			return err
		}
	}

	n, _ := m.find(key, m.hash(key))
	if n == nil {
		return fmt.Errorf("hashmap: inexistent key: %w", alloc.ErrRangeError)
	}
	if out != nil && n.value != nil {
		copy(out, m.valueBytes(n))
	}
	return nil
}

// Lookup returns a view of the value stored for key. The view stays valid
// until the entry is removed or the map is freed. For sets the view is nil.
func (m *HashMap) Lookup(key []byte) ([]byte, bool) {
	if m.buckets == nil {
		return nil, false
	}
	n, _ := m.find(key, m.hash(key))
	if n == nil {
		return nil, false
	}
	return m.valueBytes(n), true
}

// Contains reports whether key is present.
func (m *HashMap) Contains(key []byte) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Remove deletes key and frees its entry. Returns alloc.ErrRangeError if
// key is absent.
func (m *HashMap) Remove(key []byte) error {
	if m.buckets == nil {
		return fmt.Errorf("hashmap: map is freed: %w", alloc.ErrInvalidParameter)
	}

	n, link := m.find(key, m.hash(key))
	if n == nil {
		return fmt.Errorf("hashmap: inexistent key: %w", alloc.ErrRangeError)
	}

	*link = n.next
	m.freeNode(n)
	m.size--
	return nil
}

// SetString is Set with a string key.
func (m *HashMap) SetString(key string, value []byte) error {
	return m.Set([]byte(key), value)
}

// GetString is Get with a string key.
func (m *HashMap) GetString(key string, out []byte) error {
	return m.Get([]byte(key), out)
}

// RemoveString is Remove with a string key.
func (m *HashMap) RemoveString(key string) error {
	return m.Remove([]byte(key))
}

// ForEach calls fn for every entry, bucket by bucket. Within a bucket the
// most recently inserted entry comes first. fn may modify value in place
// but must not insert or remove entries.
func (m *HashMap) ForEach(fn func(key, value []byte)) {
	for _, n := range m.buckets {
		for ; n != nil; n = n.next {
			fn(n.keyBytes(), m.valueBytes(n))
		}
	}
}

// Size returns the number of entries.
func (m *HashMap) Size() uint64 {
	return m.size
}

// ValueSize returns the value size in bytes, 0 for sets.
func (m *HashMap) ValueSize() uint64 {
	return m.valueSize
}

// BucketCount returns the current number of buckets.
func (m *HashMap) BucketCount() uint64 {
	return uint64(len(m.buckets))
}

// Free releases every entry and the bucket array. The map cannot be used
// afterwards.
func (m *HashMap) Free() {
	if m.buckets == nil {
		return
	}
	for _, n := range m.buckets {
		for n != nil {
			next := n.next
			m.freeNode(n)
			n = next
		}
	}
	m.a.Free(m.raw)
	m.raw, m.buckets = nil, nil
	m.size = 0
}
