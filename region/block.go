package region

import "unsafe"

// blockHeader is the fixed-size metadata that precedes every block's
// payload. It always carries the block's true size with the state bit
// packed into its low bit (0 = free, 1 = allocated) and the block-list
// links to this block's address-order predecessor and successor.
//
// blockHeader is never allocated by Go's runtime allocator: every
// instance is an unsafe overlay onto bytes owned by the caller-supplied
// region buffer. Its layout must stay exactly three pointer-sized fields
// for headerSize/blockAlign to remain correct.
type blockHeader struct {
	sizeAndState uintptr
	next         *blockHeader
	prev         *blockHeader
}

// freeLinks is the free-sublist view of a block's first bytes. It only
// has meaning while the block is Free; once allocated, the caller's data
// occupies these same bytes.
type freeLinks struct {
	nextFree *blockHeader
	prevFree *blockHeader
}

const (
	headerSize = unsafe.Sizeof(blockHeader{})
	linksSize  = unsafe.Sizeof(freeLinks{})

	// blockAlign is the alignment every block address and size is rounded
	// to: the natural alignment of a pointer, which on every supported Go
	// platform is also at least 2, so the state bit has a spare low bit
	// to live in.
	blockAlign = unsafe.Alignof(blockHeader{})

	// minBlockSize is the smallest size a block may have: it must be able
	// to hold a header and, should it ever become Free, the two
	// free-sublist link fields in its payload (invariant 8).
	minBlockSize = headerSize + linksSize
)

const stateAllocatedBit uintptr = 1

func blockAt(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(p)
}

func headerFromPayload(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(p, -int(headerSize)))
}

func (h *blockHeader) address() uintptr {
	return uintptr(unsafe.Pointer(h))
}

func (h *blockHeader) size() uintptr {
	return h.sizeAndState &^ stateAllocatedBit
}

func (h *blockHeader) setSize(sz uintptr) {
	h.sizeAndState = sz | (h.sizeAndState & stateAllocatedBit)
}

func (h *blockHeader) end() uintptr {
	return h.address() + h.size()
}

func (h *blockHeader) isFree() bool {
	return h.sizeAndState&stateAllocatedBit == 0
}

func (h *blockHeader) markFree() {
	h.sizeAndState &^= stateAllocatedBit
}

func (h *blockHeader) markAllocated() {
	h.sizeAndState |= stateAllocatedBit
}

// payload returns the address immediately following the header, which is
// the pointer handed to callers once the block is Allocated, and the
// location of this block's free-sublist links while it is Free.
func (h *blockHeader) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), headerSize)
}

// links must only be called on a Free block. Reading it after the block
// has been handed to a caller (between unlinking it from the free
// sublist and returning its payload) would read data the caller is about
// to overwrite, not free-sublist state.
func (h *blockHeader) links() *freeLinks {
	return (*freeLinks)(h.payload())
}
