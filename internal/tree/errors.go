package tree

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Query when the requested key is not present.
var ErrNotFound = errors.New("betree: not found")

// precondition panics on an assertion-class violation: these indicate bugs
// in the caller or in the tree's own bookkeeping, not recoverable runtime
// conditions, and are never wrapped as an error value.
func precondition(format string, args ...any) {
	panic(fmt.Sprintf("betree: precondition violated: "+format, args...))
}
