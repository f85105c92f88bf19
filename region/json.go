package region

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// WriteJSON populates writer with a diagnostic dump of the allocator's
// current block list: total and live byte counts, then one object per
// block in address order. It is read-only and never changes Size,
// Allocated, Contains, or AllocationSize's contract.
func (a *Allocator) WriteJSON(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalBytes").Int(a.Size())
	obj.Name("LiveBytes").Int(a.Allocated())

	blocks := obj.Name("Blocks").Array()
	defer blocks.End()

	if !a.hasBlock {
		return
	}
	base := uintptr(a.region.base)
	for cur := blockAt(a.region.base); cur != nil; cur = cur.next {
		block := blocks.Object()
		block.Name("Offset").Int(int(cur.address() - base))
		block.Name("Size").Int(int(cur.size()))
		if cur.isFree() {
			block.Name("State").String("Free")
		} else {
			block.Name("State").String("Allocated")
		}
		block.End()
	}
}

// JSON renders the same diagnostic dump as WriteJSON into a standalone
// byte slice, for callers that don't already have a jwriter.Writer.
func (a *Allocator) JSON() ([]byte, error) {
	writer := jwriter.NewWriter()
	a.WriteJSON(&writer)
	return writer.Bytes(), writer.Error()
}
