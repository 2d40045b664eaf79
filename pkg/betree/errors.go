package betree

import "betree/internal/tree"

// ErrNotFound is returned by Query when the requested key is not present.
var ErrNotFound = tree.ErrNotFound
