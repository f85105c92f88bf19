//go:build !debug_region_alloc

package region

import "unsafe"

const (
	// DebugMargin is the number of bytes of corruption-detection padding
	// reserved after every allocated block's usable payload.
	DebugMargin int = 0
)

// writeMagicValue no-ops unless the debug_region_alloc build tag is present.
func writeMagicValue(data unsafe.Pointer, offset int) {
}

// validateMagicValue no-ops unless the debug_region_alloc build tag is present.
func validateMagicValue(data unsafe.Pointer, offset int) bool {
	return true
}

// DebugVerify calls Verify on validatable and panics if it returns an
// error. This method no-ops unless the debug_region_alloc build tag is
// present.
func DebugVerify(validatable Validatable) {
}

// debugCrossCheckAllocations no-ops unless the debug_region_alloc build
// tag is present.
func debugCrossCheckAllocations(a *Allocator) error {
	return nil
}
