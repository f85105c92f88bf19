// Package typed adapts the byte-level region allocator to a fixed
// element type, multiplying element counts by sizeof(T) before
// forwarding to the underlying allocator. It exists to satisfy the
// shape standard containers expect from an allocator, without adding
// any container integration itself.
package typed

import (
	"unsafe"

	"github.com/blockmem/allocator/region"
)

// Allocator forwards element-counted requests to a *region.Allocator in
// units of T.
type Allocator[T any] struct {
	bytes *region.Allocator
}

// New wraps bytes as an element-typed allocator of T.
func New[T any](bytes *region.Allocator) Allocator[T] {
	return Allocator[T]{bytes: bytes}
}

// Allocate returns a pointer to n contiguous, uninitialized values of T,
// or nil if the underlying allocator cannot satisfy n*sizeof(T) bytes.
func (a Allocator[T]) Allocate(n int) *T {
	var zero T
	p := a.bytes.Allocate(n * int(unsafe.Sizeof(zero)))
	return (*T)(p)
}

// Deallocate returns n elements at p to the underlying allocator. n is
// forwarded for interface parity but, like the byte-level allocator's
// size hint, is not required to recover the block's true size.
func (a Allocator[T]) Deallocate(p *T, n int) {
	a.bytes.Deallocate(unsafe.Pointer(p), n*int(unsafe.Sizeof(*new(T))))
}

// AllocationSize reports the capacity currently associated with p, in
// units of T (floor-divided from the underlying byte-level value).
func (a Allocator[T]) AllocationSize(p *T) int {
	var zero T
	sz := unsafe.Sizeof(zero)
	if sz == 0 {
		return 0
	}
	return a.bytes.AllocationSize(unsafe.Pointer(p)) / int(sz)
}

// Contains reports whether p was (or could have been) issued by the
// underlying allocator's region.
func (a Allocator[T]) Contains(p *T) bool {
	return a.bytes.Contains(uintptr(unsafe.Pointer(p)))
}
