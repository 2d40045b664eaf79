package tree

import "betree/internal/base"

// Apply absorbs one message into this node's buffer, per the four-case
// UPDATE rule and the INSERT/DELETE rules below. The four UPDATE cases
// enumerated here are authoritative, not a literal reading of the nested
// C++ branch this was ported from.
func (n *Node[K, V]) Apply(ctx *Context[K, V], mk base.MessageKey[K], msg base.Message[V]) {
	lo := n.buffer.LowerBound(base.RangeStart(mk.Key))
	hi := n.buffer.UpperBound(base.RangeEnd(mk.Key))

	switch msg.Op {
	case base.OpInsert:
		n.buffer.DeleteRange(lo, hi)
		n.buffer.Set(mk, msg)

	case base.OpDelete:
		n.buffer.DeleteRange(lo, hi)
		if !n.IsLeaf() {
			n.buffer.Set(mk, msg)
		}

	case base.OpUpdate:
		if hi > lo {
			_, existing := n.buffer.At(hi - 1)
			switch existing.Op {
			case base.OpInsert:
				combined := ctx.Combine(existing.Val, msg.Val)
				n.buffer.DeleteRange(lo, hi)
				n.buffer.Set(mk, base.Message[V]{Op: base.OpInsert, Val: combined})
			default: // OpUpdate or OpDelete: record verbatim alongside it.
				n.buffer.Set(mk, msg)
			}
			return
		}
		if n.IsLeaf() {
			seeded := ctx.Combine(ctx.Zero, msg.Val)
			n.buffer.Set(mk, base.Message[V]{Op: base.OpInsert, Val: seeded})
		} else {
			n.buffer.Set(mk, msg)
		}

	default:
		precondition("unknown op %v", msg.Op)
	}
}
