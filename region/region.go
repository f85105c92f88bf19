package region

import "unsafe"

// Region is the caller-supplied byte buffer, adjusted for block alignment.
// It keeps a Go-visible reference to the backing slice so the garbage
// collector never reclaims memory that unsafe pointers elsewhere in this
// package still address.
type Region struct {
	buf    []byte
	base   unsafe.Pointer
	length uintptr
}

// newRegion adopts buf, bumping its base up to the nearest multiple of
// blockAlign and shrinking its length correspondingly. ok is false if the
// adjustment consumes the whole buffer, leaving no room for even the
// smallest block; the zero Allocator built over such a Region simply
// never satisfies an allocation.
func newRegion(buf []byte) (r Region, ok bool) {
	if len(buf) == 0 {
		return Region{}, false
	}
	base := uintptr(unsafe.Pointer(&buf[0]))
	adjusted := alignUp(base, blockAlign)
	skip := adjusted - base
	if skip >= uintptr(len(buf)) {
		return Region{buf: buf}, false
	}
	length := uintptr(len(buf)) - skip
	return Region{
		buf:    buf,
		base:   unsafe.Pointer(&buf[skip]),
		length: length,
	}, true
}

// Bytes returns the adjusted region as a slice, for diagnostics and tests
// that want to inspect raw bytes without going through unsafe.Pointer.
func (r Region) Bytes() []byte {
	if r.length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(r.base), int(r.length))
}

// Contains reports whether addr falls within the adjusted region, using
// the closed-below, open-above convention [base, base+size).
func (r Region) Contains(addr uintptr) bool {
	if r.length == 0 {
		return false
	}
	base := uintptr(r.base)
	return addr >= base && addr < base+r.length
}

// Size returns the adjusted region size in bytes.
func (r Region) Size() int {
	return int(r.length)
}
