// Package arena provides a bump-pointer allocator over a fixed buffer.
//
// The arena hands out 16-byte aligned blocks by advancing an offset through
// its buffer. Individual blocks are never reclaimed: Free is a no-op and
// Reset rewinds the whole arena at once.
//
// # Features
//
//   - O(1) allocation, no per-block metadata
//   - In-place growth and shrinking of the most recent (tail) allocation
//   - Caller-owned buffers (New) or arena-owned anonymous mappings (NewMapped)
//
// # Realloc Semantics
//
// Realloc of any block other than the tail allocation returns a fresh block
// WITHOUT copying the old contents. Code that relocates non-tail blocks must
// copy the data itself, or create the arena with WithCopyOnRelocate.
//
// # Safety
//
// Reset invalidates every block handed out since creation. There is no
// use-after-reset detection. Arenas are not safe for concurrent use.
package arena
