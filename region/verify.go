package region

import "github.com/pkg/errors"

// Verify walks both lists and checks invariants T1-T7. It is intended for
// tests and debug builds: a quiescent allocator always satisfies it, and
// any violation indicates either a bug in this package or caller misuse
// (foreign pointer, double free, payload overrun) that the allocator
// does not otherwise detect.
func (a *Allocator) Verify() error {
	if !a.hasBlock {
		if a.firstFree != nil || a.allocated != 0 {
			return corrupt("no block installed but free head or live bytes are non-zero")
		}
		return nil
	}

	var (
		tiled          uintptr
		liveAllocated  uintptr
		blockFreeAddrs []uintptr
		prev           *blockHeader
	)

	cur := blockAt(a.region.base)
	for cur != nil {
		if cur.prev != prev {
			return corrupt("block-list predecessor mismatch at address %#x", cur.address())
		}
		if cur.next != nil && cur.end() != cur.next.address() {
			return corrupt("gap or overlap after block at address %#x", cur.address())
		}
		if cur.isFree() {
			if prev != nil && prev.isFree() && prev.end() == cur.address() {
				return corrupt("adjacent free blocks at address %#x and %#x", prev.address(), cur.address())
			}
			blockFreeAddrs = append(blockFreeAddrs, cur.address())
		} else {
			liveAllocated += cur.size()
		}
		tiled += cur.size()
		prev = cur
		cur = cur.next
	}
	if tiled != a.region.length {
		return corrupt("block list tiles %d bytes, region is %d bytes", tiled, a.region.length)
	}
	if liveAllocated != a.allocated {
		return corrupt("live-byte counter is %d, sum of allocated blocks is %d", a.allocated, liveAllocated)
	}

	var (
		freeListAddrs []uintptr
		prevFree      *blockHeader
	)
	node := a.firstFree
	for node != nil {
		if !node.isFree() {
			return corrupt("free sublist contains an allocated block at address %#x", node.address())
		}
		if node.links().prevFree != prevFree {
			return corrupt("free-sublist reciprocity broken at address %#x", node.address())
		}
		if prevFree != nil && node.address() <= prevFree.address() {
			return corrupt("free sublist is not strictly ascending at address %#x", node.address())
		}
		freeListAddrs = append(freeListAddrs, node.address())
		prevFree = node
		node = node.links().nextFree
	}

	if len(freeListAddrs) != len(blockFreeAddrs) {
		return corrupt("free sublist has %d entries, block list has %d free blocks", len(freeListAddrs), len(blockFreeAddrs))
	}
	for i := range freeListAddrs {
		if freeListAddrs[i] != blockFreeAddrs[i] {
			return corrupt("free sublist and block-list free blocks diverge at index %d", i)
		}
	}

	switch {
	case a.firstFree == nil && len(blockFreeAddrs) != 0:
		return corrupt("first_free is nil but %d free blocks exist", len(blockFreeAddrs))
	case a.firstFree != nil && len(blockFreeAddrs) == 0:
		return corrupt("first_free is non-nil but no free blocks exist")
	case a.firstFree != nil && a.firstFree.address() != blockFreeAddrs[0]:
		return corrupt("first_free is not the lowest-addressed free block")
	}

	return debugCrossCheckAllocations(a)
}

func corrupt(format string, args ...interface{}) error {
	return errors.Wrapf(ErrCorruptState, format, args...)
}
