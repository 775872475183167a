// Package budget provides an allocator that enforces a hard memory limit.
//
// Every live byte handed out through the Allocator is charged against a
// budget. Requests that would exceed it fail like any other allocation
// failure: Alloc and Realloc return nil. Charges are returned on Free.
package budget

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/xstd/alloc"
	"github.com/hupe1980/xstd/internal/conv"
	"github.com/hupe1980/xstd/internal/resource"
)

type options struct {
	logger *slog.Logger
}

// Option is a configuration option for Allocator.
type Option func(*options)

// WithLogger sets a logger that is told about rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Allocator charges allocations against a memory budget before forwarding
// them to a target allocator.
//
// The target is borrowed. Allocator is not safe for concurrent use; the
// underlying budget accounting is.
type Allocator struct {
	target  alloc.Allocator
	ctrl    *resource.Controller
	charged map[uintptr]uint64
	opts    options
}

// New creates an allocator that forwards to target and refuses requests once
// limitBytes are live. A limit of 0 only tracks usage.
func New(target alloc.Allocator, limitBytes int64, opts ...Option) (*Allocator, error) {
	if target == nil {
		return nil, fmt.Errorf("budget: nil target allocator: %w", alloc.ErrInvalidParameter)
	}
	if limitBytes < 0 {
		return nil, fmt.Errorf("budget: negative limit %d: %w", limitBytes, alloc.ErrInvalidParameter)
	}

	a := &Allocator{
		target:  target,
		ctrl:    resource.NewController(resource.Config{MemoryLimitBytes: limitBytes}),
		charged: make(map[uintptr]uint64),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a, nil
}

func (a *Allocator) acquire(size uint64) bool {
	n, err := conv.Uint64ToInt64(size)
	if err == nil {
		err = a.ctrl.AcquireMemory(n)
	}
	if err != nil {
		if a.opts.logger != nil {
			a.opts.logger.Warn("allocation rejected",
				"size", size,
				"usage", a.ctrl.MemoryUsage(),
				"limit", a.ctrl.MemoryLimit(),
				"error", err,
			)
		}
		return false
	}
	return true
}

func (a *Allocator) release(size uint64) {
	// size was accepted by acquire, so it fits in int64.
	a.ctrl.ReleaseMemory(int64(size)) //nolint:gosec // checked on acquire
}

// Alloc charges size bytes and forwards to the target.
func (a *Allocator) Alloc(size uint64) []byte {
	if size == 0 || !a.acquire(size) {
		return nil
	}

	block := a.target.Alloc(size)
	if block == nil {
		a.release(size)
		return nil
	}
	a.charged[alloc.Addr(block)] = size
	return block
}

// Free forwards to the target and returns the block's charge.
func (a *Allocator) Free(block []byte) {
	if len(block) == 0 {
		return
	}
	addr := alloc.Addr(block)
	if size, ok := a.charged[addr]; ok {
		delete(a.charged, addr)
		a.release(size)
	}
	a.target.Free(block)
}

// Realloc charges the growth, if any, before forwarding to the target.
// Blocks that did not come from this allocator are charged in full.
func (a *Allocator) Realloc(block []byte, size uint64) []byte {
	if len(block) == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		a.Free(block)
		return nil
	}

	oldAddr := alloc.Addr(block)
	oldSize := a.charged[oldAddr]

	var grow uint64
	if size > oldSize {
		grow = size - oldSize
		if !a.acquire(grow) {
			return nil
		}
	}

	fresh := a.target.Realloc(block, size)
	if fresh == nil {
		if grow > 0 {
			a.release(grow)
		}
		return nil
	}

	if size < oldSize {
		a.release(oldSize - size)
	}
	delete(a.charged, oldAddr)
	a.charged[alloc.Addr(fresh)] = size
	return fresh
}

// Usage returns the number of bytes currently charged.
func (a *Allocator) Usage() int64 {
	return a.ctrl.MemoryUsage()
}

// Peak returns the highest charged usage observed.
func (a *Allocator) Peak() int64 {
	return a.ctrl.PeakMemoryUsage()
}

// Limit returns the budget in bytes, 0 if unlimited.
func (a *Allocator) Limit() int64 {
	return a.ctrl.MemoryLimit()
}

// Compile-time interface check
var _ alloc.Allocator = (*Allocator)(nil)
