package hashmap

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// HashFunc hashes a key. It must be deterministic for the lifetime of a map.
type HashFunc func(key []byte) uint64

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3

	fnvOffset32 = 0x811c9dc5
	fnvPrime32  = 0x01000193
)

// FNV1a64 returns the 64-bit FNV-1a hash of key.
func FNV1a64(key []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range key {
		h = (h ^ uint64(c)) * fnvPrime64
	}
	return h
}

// FNV1a32 returns the 32-bit FNV-1a hash of key.
func FNV1a32(key []byte) uint64 {
	h := uint32(fnvOffset32)
	for _, c := range key {
		h = (h ^ uint32(c)) * fnvPrime32
	}
	return uint64(h)
}

// XXHash64 hashes key with xxHash64.
func XXHash64(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// defaultHash is FNV-1a sized to the platform word.
func defaultHash() HashFunc {
	if bits.UintSize == 64 {
		return FNV1a64
	}
	return FNV1a32
}
