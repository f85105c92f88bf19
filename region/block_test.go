package region

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMinBlockSizeHoldsHeaderAndFreeLinks(t *testing.T) {
	require.GreaterOrEqual(t, minBlockSize, headerSize+linksSize)
	require.Equal(t, uintptr(0), minBlockSize%blockAlign)
}

func TestBlockAlignSparesStateBit(t *testing.T) {
	require.GreaterOrEqual(t, blockAlign, uintptr(2))
	require.Equal(t, uintptr(0), blockAlign&(blockAlign-1), "blockAlign must be a power of two")
}

func TestSizeStateEncodingRoundTrips(t *testing.T) {
	buf := make([]byte, minBlockSize*4)
	reg, ok := newRegion(buf)
	require.True(t, ok)

	h := blockAt(reg.base)
	h.sizeAndState = reg.length

	h.markAllocated()
	require.False(t, h.isFree())
	require.Equal(t, reg.length, h.size())

	h.markFree()
	require.True(t, h.isFree())
	require.Equal(t, reg.length, h.size())

	h.setSize(minBlockSize)
	require.Equal(t, minBlockSize, h.size())
	require.True(t, h.isFree())
}

func TestPayloadHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, minBlockSize*2)
	reg, ok := newRegion(buf)
	require.True(t, ok)

	h := blockAt(reg.base)
	h.sizeAndState = reg.length

	got := headerFromPayload(h.payload())
	require.Equal(t, unsafe.Pointer(h), unsafe.Pointer(got))
}

// TestSplitLeavesMinimumUnsplit is scenario 6 from the allocator's
// testable properties: requesting everything except the smallest
// possible free tail must not split, since the tail couldn't hold a
// header plus the two free-sublist links (minBlockSize).
func TestSplitLeavesMinimumUnsplit(t *testing.T) {
	buf := make([]byte, 4096)
	a := New(buf)
	total := a.Size()

	request := total - int(headerSize) - int(minBlockSize-1)
	p := a.Allocate(request)
	require.NotNil(t, p)
	require.Equal(t, total, a.Allocated(), "the whole region should be consumed rather than leaving a too-small tail")
	require.NoError(t, a.Verify())
}

func TestSplitLeavesExactMinimumTail(t *testing.T) {
	buf := make([]byte, 4096)
	a := New(buf)
	total := a.Size()

	request := total - int(headerSize) - int(minBlockSize)
	p := a.Allocate(request)
	require.NotNil(t, p)
	require.Less(t, a.Allocated(), total, "a tail exactly minBlockSize should split off as its own free block")
	require.NoError(t, a.Verify())
}

func TestAllocateNegativeSizeReturnsNil(t *testing.T) {
	a := New(make([]byte, 4096))
	require.Nil(t, a.Allocate(-1))
}

func TestVerifyDetectsAdjacentFreeCorruption(t *testing.T) {
	a := New(make([]byte, 4096))
	p1 := a.Allocate(64)
	p2 := a.Allocate(64)
	require.NotNil(t, p1)
	require.NotNil(t, p2)

	h2 := headerFromPayload(p2)
	h2.markFree()

	require.Error(t, a.Verify())
}
