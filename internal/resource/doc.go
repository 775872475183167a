// Package resource implements the memory budget shared by budgeted allocators.
//
// A Controller tracks how many bytes are currently charged against it and,
// when configured with a limit, refuses charges that would exceed it.
// AcquireMemory never blocks: it either reserves the bytes immediately or
// returns ErrMemoryLimitExceeded, and the caller turns that into an ordinary
// allocation failure.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 20, // 1MiB budget
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides what to do
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional budgeting without nil checks everywhere.
package resource
