package tree

import (
	"betree/internal/base"
	"betree/internal/container"
)

// Batch is an ordered collection of messages handed to Flush, all destined
// for one subtree. A Batch is always sorted ascending by MessageKey: the
// tree façade builds singleton batches directly in order, and Flush slices
// contiguous runs out of an already-sorted buffer when forming sub-batches.
type Batch[K any, V any] []container.Pair[base.MessageKey[K], base.Message[V]]

// Min returns the batch's smallest message key.
func (b Batch[K, V]) Min() base.MessageKey[K] {
	return b[0].Key
}

// Max returns the batch's largest message key.
func (b Batch[K, V]) Max() base.MessageKey[K] {
	return b[len(b)-1].Key
}
