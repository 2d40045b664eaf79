package tree

import (
	"betree/internal/base"
	"betree/internal/container"
)

// mergedKind distinguishes the two streams split's merge-walk draws from.
type mergedKind int

const (
	mergedPivot mergedKind = iota
	mergedMessage
)

// mergedItem is one element of the key-ordered walk across this node's
// pivots and buffered messages, used to partition both into new siblings
// together.
type mergedItem[K any, V any] struct {
	kind mergedKind
	key  K // routing key: the pivot's key, or the message's MessageKey.Key
	pv   container.Pair[K, *childInfo[K, V]]
	mv   container.Pair[base.MessageKey[K], base.Message[V]]
}

// mergeWalk produces every pivot and every buffered message of n in
// ascending key order, with a pivot sorting before any message that shares
// its exact key (so a pivot's own range starts with the pivot itself).
func (n *Node[K, V]) mergeWalk(ctx *Context[K, V]) []mergedItem[K, V] {
	pivots := n.pivots.Pairs()
	messages := n.buffer.Pairs()
	out := make([]mergedItem[K, V], 0, len(pivots)+len(messages))

	i, j := 0, 0
	for i < len(pivots) || j < len(messages) {
		switch {
		case i >= len(pivots):
			out = append(out, mergedItem[K, V]{kind: mergedMessage, key: messages[j].Key.Key, mv: messages[j]})
			j++
		case j >= len(messages):
			out = append(out, mergedItem[K, V]{kind: mergedPivot, key: pivots[i].Key, pv: pivots[i]})
			i++
		default:
			c := ctx.Cmp(pivots[i].Key, messages[j].Key.Key)
			if c <= 0 {
				out = append(out, mergedItem[K, V]{kind: mergedPivot, key: pivots[i].Key, pv: pivots[i]})
				i++
			} else {
				out = append(out, mergedItem[K, V]{kind: mergedMessage, key: messages[j].Key.Key, mv: messages[j]})
				j++
			}
		}
	}
	return out
}

// Split redistributes this node's pivots and messages into several new
// sibling nodes and returns a pivot map pointing at them. Called when
// Size() >= MaxNodeSize.
func (n *Node[K, V]) Split(ctx *Context[K, V]) *PivotMap[K, V] {
	total := n.Size()
	if total == 0 {
		precondition("split called on an empty node")
	}

	numNew := total / ((10 * ctx.Tuning.MaxNodeSize) / 24)
	if numNew < 1 {
		numNew = 1
	}
	perNew := (total + numNew - 1) / numNew

	var newNodes []*Node[K, V]
	var registerKeys []K

	flushCurrent := func(cur *Node[K, V], key K) {
		newNodes = append(newNodes, cur)
		registerKeys = append(registerKeys, key)
	}

	cur := NewNode[K, V](ctx)
	count := 0
	haveKey := false
	var curKey K

	addItem := func(item mergedItem[K, V]) {
		switch item.kind {
		case mergedPivot:
			cur.pivots.Set(item.pv.Key, item.pv.Val)
		case mergedMessage:
			cur.buffer.Set(item.mv.Key, item.mv.Val)
		}
		if !haveKey {
			curKey = item.key
			haveKey = true
		}
		count++
	}

	if n.IsLeaf() {
		// No pivots exist to anchor a cut, so messages are assigned to new
		// nodes purely by count.
		for _, pair := range n.buffer.Pairs() {
			if count >= perNew {
				flushCurrent(cur, curKey)
				cur, count, haveKey = NewNode[K, V](ctx), 0, false
			}
			addItem(mergedItem[K, V]{kind: mergedMessage, key: pair.Key.Key, mv: pair})
		}
	} else {
		for _, item := range n.mergeWalk(ctx) {
			if item.kind == mergedPivot && count >= perNew && count > 0 {
				flushCurrent(cur, curKey)
				cur, count, haveKey = NewNode[K, V](ctx), 0, false
			}
			addItem(item)
		}
	}
	if count > 0 {
		flushCurrent(cur, curKey)
	}

	if len(newNodes) == 0 {
		precondition("split produced zero children")
	}

	n.pivots = container.NewSortedMap[K, *childInfo[K, V]](ctx.Cmp)
	n.buffer = container.NewSortedMap[base.MessageKey[K], base.Message[V]](ctx.mkCmp)

	result := container.NewSortedMap[K, *childInfo[K, V]](ctx.Cmp)
	for i, child := range newNodes {
		result.Set(registerKeys[i], &childInfo[K, V]{child: child, size: child.Size()})
	}
	return result
}
