//go:build debug_region_alloc

package region

import (
	"unsafe"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
)

const (
	// DebugMargin is the number of bytes of corruption-detection padding
	// reserved after every allocated block's usable payload. Must be a
	// multiple of 4 so the magic-value words are naturally aligned.
	DebugMargin int = 16

	corruptionDetectionMagicValue uint32 = 0x7F84E666
)

// writeMagicValue stamps DebugMargin bytes at data+offset with an
// easy-to-identify marker.
func writeMagicValue(data unsafe.Pointer, offset int) {
	dest := unsafe.Add(data, offset)
	words := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		*(*uint32)(dest) = corruptionDetectionMagicValue
		dest = unsafe.Add(dest, unsafe.Sizeof(uint32(0)))
	}
}

// validateMagicValue reports whether the marker written by writeMagicValue
// is still intact at data+offset.
func validateMagicValue(data unsafe.Pointer, offset int) bool {
	source := unsafe.Add(data, offset)
	words := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		if *(*uint32)(source) != corruptionDetectionMagicValue {
			return false
		}
		source = unsafe.Add(source, unsafe.Sizeof(uint32(0)))
	}
	return true
}

// DebugVerify calls Verify on validatable and panics if it returns an
// error.
func DebugVerify(validatable Validatable) {
	if err := validatable.Verify(); err != nil {
		panic(err)
	}
}

// debugCrossCheckAllocations independently rebuilds a registry of every
// Allocated block's address and size by walking the block list, the same
// role TLSFBlockMetadata.handleKey plays for handle lookups in the
// teacher's metadata package, then checks it against AllocationSize for
// every entry. It exists as a second, differently-shaped pass over the
// same data Verify's own block-list walk already checks, to catch bugs
// that would otherwise affect both passes identically.
func debugCrossCheckAllocations(a *Allocator) error {
	if !a.hasBlock {
		return nil
	}
	registry := swiss.NewMap[uintptr, uintptr](8)
	for cur := blockAt(a.region.base); cur != nil; cur = cur.next {
		if !cur.isFree() {
			registry.Put(cur.address(), cur.size())
		}
	}

	var rangeErr error
	registry.Iter(func(address, size uintptr) (stop bool) {
		want := int(size - headerSize - uintptr(DebugMargin))
		if got := a.AllocationSize(unsafe.Pointer(blockAt(unsafe.Pointer(address)).payload())); got != want {
			rangeErr = errors.Wrapf(ErrCorruptState, "cross-check mismatch at address %#x: registry says %d, AllocationSize says %d", address, want, got)
			return true
		}
		return false
	})
	return rangeErr
}
