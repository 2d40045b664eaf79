// Package tree implements the Bε-tree node model: the pivot table and
// message buffer pair, message absorption (apply), the recursive flush
// engine, node splitting, and point query replay.
package tree

import (
	"betree/internal/base"
	"betree/internal/container"
)

// childInfo is the pivot table's value type: a link to a child node plus a
// cached size hint used by flush heuristics.
type childInfo[K any, V any] struct {
	child *Node[K, V]
	size  int
}

// PivotMap is a pivot table in isolation: the type Flush and Split return
// when a node must hand its caller a replacement set of children.
type PivotMap[K any, V any] = container.SortedMap[K, *childInfo[K, V]]

// Node is a single Bε-tree node: an ordered pivot table routing to children,
// and an ordered buffer of messages pending absorption. A Node with an
// empty pivot table is a leaf.
type Node[K any, V any] struct {
	pivots *container.SortedMap[K, *childInfo[K, V]]
	buffer *container.SortedMap[base.MessageKey[K], base.Message[V]]
}

// NewNode builds an empty node (a leaf, until pivots are installed).
func NewNode[K any, V any](ctx *Context[K, V]) *Node[K, V] {
	return &Node[K, V]{
		pivots: container.NewSortedMap[K, *childInfo[K, V]](ctx.Cmp),
		buffer: container.NewSortedMap[base.MessageKey[K], base.Message[V]](ctx.mkCmp),
	}
}

// IsLeaf reports whether this node has no pivots, per the spec's
// definition of a leaf.
func (n *Node[K, V]) IsLeaf() bool {
	return n.pivots.Len() == 0
}

// Size is the node's pivot-count plus buffer-count, the quantity compared
// against MaxNodeSize.
func (n *Node[K, V]) Size() int {
	return n.pivots.Len() + n.buffer.Len()
}

// routeChild returns the index of the pivot with the greatest key <= k
// (predecessor lookup), and false if no pivot qualifies (k sorts before
// every pivot, meaning the key is not present in this subtree).
func routeChild[K any, V any](pivots *container.SortedMap[K, *childInfo[K, V]], k K) (int, bool) {
	idx := pivots.UpperBound(k) - 1
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// AdoptPivots replaces this node's pivot table wholesale. Used by the tree
// façade when the root itself splits: the root keeps its identity and
// becomes the parent of the new sibling nodes Split returned, rather than
// handing its slot to one of them.
func (n *Node[K, V]) AdoptPivots(p *PivotMap[K, V]) {
	n.pivots = p
}

// pivotRangeEnd returns the key of the pivot after index idx, which is the
// exclusive upper bound of the keys routed to the pivot at idx, and false
// if idx is the last pivot (its range is unbounded above).
func pivotRangeEnd[K any, V any](pivots *container.SortedMap[K, *childInfo[K, V]], idx int) (K, bool) {
	if idx+1 >= pivots.Len() {
		var zero K
		return zero, false
	}
	nextKey, _ := pivots.At(idx + 1)
	return nextKey, true
}
