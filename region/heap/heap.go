// Package heap provides a process-wide static holder for region
// allocators, indexed so that more than one independent heap can live
// in the same process. It performs no synchronization: callers sequence
// Create and Get themselves, exactly as the underlying allocator does.
package heap

import (
	"github.com/pkg/errors"

	"github.com/blockmem/allocator/region"
)

// ErrNotCreated is returned by Get when no Create call has ever
// succeeded for the given index.
var ErrNotCreated error = errors.New("heap: no allocator created for this index")

// ErrAlreadyCreated is returned by Create when an allocator already
// exists for the given index.
var ErrAlreadyCreated error = errors.New("heap: allocator already created for this index")

var allocMap = map[int]*region.Allocator{}

// Create in-place constructs the allocator instance at index over buf.
// It must be called exactly once per index, before any Get(index) for
// that index. Distinct indices hold distinct, independent allocators.
// Create performs no synchronization; callers sharing an index across
// goroutines must sequence their own calls.
func Create(index int, buf []byte) error {
	if _, exists := allocMap[index]; exists {
		return errors.Wrapf(ErrAlreadyCreated, "index %d", index)
	}
	allocMap[index] = region.New(buf)
	return nil
}

// Get returns the shared allocator previously installed at index by
// Create, or ErrNotCreated if Create was never called for that index.
func Get(index int) (*region.Allocator, error) {
	a, exists := allocMap[index]
	if !exists {
		return nil, errors.Wrapf(ErrNotCreated, "index %d", index)
	}
	return a, nil
}

// Reset removes any allocator previously installed at index. It exists
// for tests that need a clean package-level map between cases; it has
// no analogue in the original one-shot-lifecycle design.
func Reset(index int) {
	delete(allocMap, index)
}
