package tree

import "betree/internal/base"

// Flush absorbs batch into this node, recursively pushing messages toward
// leaves and splitting any node that grows past MaxNodeSize. It returns nil
// if this node remains viable, or a non-empty replacement pivot map the
// caller must install in place of its link to this node.
func (n *Node[K, V]) Flush(ctx *Context[K, V], batch Batch[K, V]) *PivotMap[K, V] {
	if len(batch) == 0 {
		precondition("flush called with an empty batch")
	}

	if n.IsLeaf() {
		return n.flushLeaf(ctx, batch)
	}
	return n.flushNonLeaf(ctx, batch)
}

func (n *Node[K, V]) flushLeaf(ctx *Context[K, V], batch Batch[K, V]) *PivotMap[K, V] {
	for _, m := range batch {
		n.Apply(ctx, m.Key, m.Val)
	}
	if n.Size() >= ctx.Tuning.MaxNodeSize {
		return n.Split(ctx)
	}
	return nil
}

func (n *Node[K, V]) flushNonLeaf(ctx *Context[K, V], batch Batch[K, V]) *PivotMap[K, V] {
	n.adjustLeftEdge(ctx, batch.Min().Key)

	minIdx, minOK := routeChild(n.pivots, batch.Min().Key)
	maxIdx, maxOK := routeChild(n.pivots, batch.Max().Key)
	if !minOK || !maxOK {
		precondition("batch key routes below every pivot after left-edge adjustment")
	}

	if minIdx == maxIdx {
		n.flushChild(ctx, minIdx, batch)
		return nil
	}

	for _, m := range batch {
		n.Apply(ctx, m.Key, m.Val)
	}

	for n.Size() >= ctx.Tuning.MaxNodeSize {
		heaviestIdx, heaviestCount := n.heaviestChild(ctx)
		if heaviestCount <= ctx.Tuning.MinFlushSize {
			break
		}
		sub := n.extractMessagesForPivot(heaviestIdx)
		n.flushChild(ctx, heaviestIdx, sub)
	}

	if n.Size() > ctx.Tuning.MaxNodeSize {
		return n.Split(ctx)
	}
	return nil
}

// adjustLeftEdge renames the first pivot's key to minKey if minKey sorts
// strictly before it, preserving invariant 1 (pivot coverage) when a batch
// introduces keys below this node's current routing range.
func (n *Node[K, V]) adjustLeftEdge(ctx *Context[K, V], minKey K) {
	firstKey, _ := n.pivots.At(0)
	if ctx.Cmp(minKey, firstKey) < 0 {
		n.pivots.RenameKeyAt(0, minKey)
	}
}

// flushChild recursively flushes batch into the child at pivot index idx,
// installing any replacement pivots the child's flush returns, or
// otherwise refreshing the cached child size.
func (n *Node[K, V]) flushChild(ctx *Context[K, V], idx int, batch Batch[K, V]) {
	_, info := n.pivots.At(idx)
	replacement := info.child.Flush(ctx, batch)
	if replacement == nil {
		info.size = info.child.Size()
		n.pivots.SetAt(idx, info)
		return
	}
	n.installReplacement(idx, replacement)
}

// installReplacement replaces the pivot at idx with the set of pivots a
// child's split returned, each pointing at one of the new sibling nodes.
func (n *Node[K, V]) installReplacement(idx int, replacement *PivotMap[K, V]) {
	if replacement.Len() == 0 {
		precondition("split produced zero children")
	}
	n.pivots.DeleteRange(idx, idx+1)
	n.pivots.InsertAt(idx, replacement.Pairs())
}

// heaviestChild scans all pivots and returns the index of the one with the
// most buffered messages routed to it, breaking ties toward the earlier
// (smaller-key) pivot.
func (n *Node[K, V]) heaviestChild(ctx *Context[K, V]) (int, int) {
	best, bestCount := -1, -1
	for i := 0; i < n.pivots.Len(); i++ {
		count := n.countMessagesForPivot(i)
		if count > bestCount {
			best, bestCount = i, count
		}
	}
	return best, bestCount
}

func (n *Node[K, V]) pivotMessageRange(idx int) (lo, hi int) {
	pivotKey, _ := n.pivots.At(idx)
	lo = n.buffer.LowerBound(base.RangeStart(pivotKey))
	if nextKey, ok := pivotRangeEnd(n.pivots, idx); ok {
		hi = n.buffer.LowerBound(base.RangeStart(nextKey))
	} else {
		hi = n.buffer.Len()
	}
	return lo, hi
}

func (n *Node[K, V]) countMessagesForPivot(idx int) int {
	lo, hi := n.pivotMessageRange(idx)
	return hi - lo
}

// extractMessagesForPivot removes and returns every message currently
// routed to the pivot at idx, in ascending MessageKey order.
func (n *Node[K, V]) extractMessagesForPivot(idx int) Batch[K, V] {
	lo, hi := n.pivotMessageRange(idx)
	return Batch[K, V](n.buffer.DeleteRange(lo, hi))
}
