// Package mmap provides anonymous memory mappings for allocator backing buffers.
//
// # Overview
//
// An anonymous mapping is a read-write region obtained directly from the
// operating system. Its pages live outside the Go heap, so the garbage
// collector never scans or moves them, and addresses handed out by an
// allocator built on top of the mapping stay valid until the mapping is
// closed.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // 1 MiB, zero-filled
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure
// nothing touches Bytes() after Close returns.
package mmap
