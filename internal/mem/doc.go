// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// AllocAligned returns Go-managed buffers whose first byte sits on a chosen
// power-of-two boundary, so allocators built over them lose no bytes to
// leading alignment padding.
package mem
