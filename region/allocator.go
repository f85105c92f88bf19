// Package region implements a fixed-region, general-purpose dynamic
// memory allocator over a single caller-supplied byte buffer. It is an
// intrusive doubly-linked free-list allocator: first-fit search,
// split-on-leftover, and immediate bidirectional coalescing on free.
//
// The allocator is single-threaded and cooperative. It performs no
// internal synchronization; callers sharing an *Allocator across
// goroutines must supply their own mutual exclusion.
package region

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Allocator owns a Region and the block/free-sublist state tiling it.
// The zero value is not usable; construct one with New.
type Allocator struct {
	region    Region
	hasBlock  bool
	firstFree *blockHeader
	allocated uintptr
}

// New adopts buf as the allocator's backing storage and installs one
// Free block spanning the adjusted region. If buf is too small to hold
// even the smallest block, no block is installed: the returned Allocator
// is still valid to call, Allocate always returns nil, and Verify never
// walks a block list that was never written.
func New(buf []byte) *Allocator {
	a := &Allocator{}
	reg, ok := newRegion(buf)
	a.region = reg
	if !ok || reg.length < minBlockSize {
		return a
	}
	first := blockAt(reg.base)
	first.sizeAndState = uintptr(reg.length)
	first.next = nil
	first.prev = nil
	links := first.links()
	links.nextFree = nil
	links.prevFree = nil
	a.firstFree = first
	a.hasBlock = true
	return a
}

// Allocate returns a pointer to a payload of at least size bytes, or nil
// if no Free block is large enough. The returned pointer is aligned to
// the block alignment; its contents are uninitialized.
func (a *Allocator) Allocate(size int) unsafe.Pointer {
	DebugVerify(a)
	if size < 0 {
		return nil
	}
	need := alignUp(uintptr(size)+uintptr(DebugMargin)+headerSize, blockAlign)
	if need < minBlockSize {
		need = minBlockSize
	}

	var prev *blockHeader
	cur := a.firstFree
	for cur != nil && cur.size() < need {
		prev = cur
		cur = cur.links().nextFree
	}
	if cur == nil {
		return nil
	}

	if cur.size()-need >= minBlockSize {
		a.split(cur, need)
	}
	a.unlinkFree(prev, cur)
	cur.markAllocated()
	a.allocated += cur.size()
	if DebugMargin > 0 {
		writeMagicValue(cur.payload(), int(cur.size()-headerSize-uintptr(DebugMargin)))
	}
	return cur.payload()
}

// split carves a new Free tail of size cur.size()-head out of cur,
// shrinking cur to head bytes, and threads the tail into both the block
// list and the free sublist immediately after cur.
func (a *Allocator) split(cur *blockHeader, head uintptr) {
	tail := blockAt(unsafe.Add(unsafe.Pointer(cur), head))
	tail.sizeAndState = cur.size() - head
	tail.prev = cur
	tail.next = cur.next
	if cur.next != nil {
		cur.next.prev = tail
	}
	cur.next = tail

	curLinks := cur.links()
	oldNextFree := curLinks.nextFree
	tailLinks := tail.links()
	tailLinks.prevFree = cur
	tailLinks.nextFree = oldNextFree
	if oldNextFree != nil {
		oldNextFree.links().prevFree = tail
	}

	cur.setSize(head)
	curLinks.nextFree = tail
}

// unlinkFree removes cur from the free sublist, where prev was cur's
// free-sublist predecessor at the time it was located by Allocate's scan.
func (a *Allocator) unlinkFree(prev, cur *blockHeader) {
	next := cur.links().nextFree
	if prev != nil {
		prev.links().nextFree = next
	} else {
		a.firstFree = next
	}
	if next != nil {
		next.links().prevFree = prev
	}
}

// Deallocate returns the block at ptr to Free state, coalescing with
// adjacent Free neighbors. sizeHint is accepted for interface parity with
// typed adapters but ignored: the true size is recovered from the
// header. Deallocating nil is a no-op.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, sizeHint int) {
	_ = sizeHint
	if ptr == nil {
		return
	}
	h := headerFromPayload(ptr)
	a.allocated -= h.size()
	h.markFree()

	var left *blockHeader
	for p := h.prev; p != nil; p = p.prev {
		if p.isFree() {
			left = p
			break
		}
	}
	if left != nil {
		a.insertFreeAfter(left, h)
	} else {
		a.prependFree(h)
	}

	if nf := h.links().nextFree; nf != nil && h.end() == nf.address() {
		a.mergeForward(h, nf)
	}
	if pf := h.links().prevFree; pf != nil && pf.end() == h.address() {
		a.mergeForward(pf, h)
	}
	DebugVerify(a)
}

func (a *Allocator) insertFreeAfter(left, h *blockHeader) {
	leftLinks := left.links()
	hLinks := h.links()
	hLinks.nextFree = leftLinks.nextFree
	hLinks.prevFree = left
	if leftLinks.nextFree != nil {
		leftLinks.nextFree.links().prevFree = h
	}
	leftLinks.nextFree = h
}

func (a *Allocator) prependFree(h *blockHeader) {
	hLinks := h.links()
	hLinks.prevFree = nil
	hLinks.nextFree = a.firstFree
	if a.firstFree != nil {
		a.firstFree.links().prevFree = h
	}
	a.firstFree = h
}

// mergeForward folds src, dst's block-list successor, into dst: dst's
// size grows by src's size, src is unlinked from both lists and ceases
// to exist as a block.
func (a *Allocator) mergeForward(dst, src *blockHeader) {
	a.unlinkFreeOnly(src)
	dst.setSize(dst.size() + src.size())
	dst.next = src.next
	if src.next != nil {
		src.next.prev = dst
	}
}

// unlinkFreeOnly removes b from the free sublist using b's own stored
// links, as opposed to unlinkFree which takes an externally-tracked
// predecessor from a scan in progress.
func (a *Allocator) unlinkFreeOnly(b *blockHeader) {
	links := b.links()
	if links.prevFree != nil {
		links.prevFree.links().nextFree = links.nextFree
	} else {
		a.firstFree = links.nextFree
	}
	if links.nextFree != nil {
		links.nextFree.links().prevFree = links.prevFree
	}
}

// AllocationSize returns the payload capacity currently associated with
// ptr: the block's true size minus header overhead and DebugMargin (0
// outside the debug_region_alloc build tag). Always ≥ the size
// originally requested from Allocate.
func (a *Allocator) AllocationSize(ptr unsafe.Pointer) int {
	if ptr == nil {
		return 0
	}
	return int(headerFromPayload(ptr).size() - headerSize - uintptr(DebugMargin))
}

// CheckCorruption walks every Allocated block and verifies its trailing
// debug margin is intact. It always succeeds when DebugMargin is 0 (the
// default, non-debug build); it exists to be exercised under the
// debug_region_alloc build tag.
func (a *Allocator) CheckCorruption() error {
	if DebugMargin == 0 || !a.hasBlock {
		return nil
	}
	for cur := blockAt(a.region.base); cur != nil; cur = cur.next {
		if cur.isFree() {
			continue
		}
		usable := int(cur.size() - headerSize - uintptr(DebugMargin))
		if !validateMagicValue(cur.payload(), usable) {
			return errors.Wrapf(ErrCorruptState, "corruption detected after allocation at address %#x", cur.address())
		}
	}
	return nil
}

// Contains reports whether addr lies inside the adjusted region.
func (a *Allocator) Contains(addr uintptr) bool {
	return a.region.Contains(addr)
}

// Allocated returns the live-byte counter: the sum of true sizes of all
// currently Allocated blocks, including header overhead.
func (a *Allocator) Allocated() int {
	return int(a.allocated)
}

// Size returns the adjusted region size in bytes.
func (a *Allocator) Size() int {
	return a.region.Size()
}

// Bytes returns the adjusted region as a slice, for diagnostics.
func (a *Allocator) Bytes() []byte {
	return a.region.Bytes()
}

// Move transfers ownership of a's region and state to a new Allocator
// and leaves a empty (nil free list, zero live bytes, zero-length
// region) so it is inert rather than subtly reusable. The allocator
// value is movable but not copyable; Move is the Go expression of that.
func (a *Allocator) Move() *Allocator {
	out := &Allocator{
		region:    a.region,
		hasBlock:  a.hasBlock,
		firstFree: a.firstFree,
		allocated: a.allocated,
	}
	a.region = Region{}
	a.hasBlock = false
	a.firstFree = nil
	a.allocated = 0
	return out
}
