package region

import "golang.org/x/exp/slog"

// DebugLogAllocations walks the block list and invokes logFunc for every
// currently Allocated block, in address order. It is a plain diagnostic
// helper, not gated by any build tag: callers who want it silenced
// simply don't call it.
func (a *Allocator) DebugLogAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, address uintptr, size int, usable int)) {
	if !a.hasBlock {
		return
	}
	for cur := blockAt(a.region.base); cur != nil; cur = cur.next {
		if cur.isFree() {
			continue
		}
		logFunc(logger, cur.address(), int(cur.size()), a.AllocationSize(cur.payload()))
	}
}
