package region

import "github.com/pkg/errors"

// ErrCorruptState is returned by Verify when an internal invariant (T1-T7)
// does not hold.
var ErrCorruptState error = errors.New("region allocator invariant violated")
