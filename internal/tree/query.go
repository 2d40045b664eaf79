package tree

import (
	"errors"

	"betree/internal/base"
)

// Query returns the current value for k, or ErrNotFound if k is absent.
func (n *Node[K, V]) Query(ctx *Context[K, V], k K) (V, error) {
	if n.IsLeaf() {
		return n.queryLeaf(ctx, k)
	}
	return n.queryNonLeaf(ctx, k)
}

func (n *Node[K, V]) queryLeaf(ctx *Context[K, V], k K) (V, error) {
	var zero V
	lo := n.buffer.LowerBound(base.RangeStart(k))
	if lo >= n.buffer.Len() {
		return zero, ErrNotFound
	}
	mk, msg := n.buffer.At(lo)
	if ctx.Cmp(mk.Key, k) != 0 {
		return zero, ErrNotFound
	}
	if msg.Op != base.OpInsert {
		precondition("leaf buffer holds a non-insert message for %v", k)
	}
	return msg.Val, nil
}

func (n *Node[K, V]) queryNonLeaf(ctx *Context[K, V], k K) (V, error) {
	var zero V
	iter := n.buffer.LowerBound(base.RangeStart(k))
	atTarget := func() bool {
		if iter >= n.buffer.Len() {
			return false
		}
		mk, _ := n.buffer.At(iter)
		return ctx.Cmp(mk.Key, k) == 0
	}

	var v V
	if !atTarget() {
		childVal, err := n.queryRoutedChild(ctx, k)
		if err != nil {
			return zero, err
		}
		v = childVal
	} else {
		_, msg := n.buffer.At(iter)
		switch msg.Op {
		case base.OpUpdate:
			childVal, err := n.queryRoutedChild(ctx, k)
			switch {
			case err == nil:
				v = childVal
			case errors.Is(err, ErrNotFound):
				v = ctx.Zero
			default:
				return zero, err
			}
			// iter is not advanced: stage 2 folds this update below.
		case base.OpDelete:
			iter++
			if !atTarget() {
				return zero, ErrNotFound
			}
			_, ins := n.buffer.At(iter)
			if ins.Op != base.OpInsert {
				precondition("message following a delete for %v is not an insert", k)
			}
			v = ins.Val
			iter++
		default: // OpInsert
			v = msg.Val
			iter++
		}
	}

	for atTarget() {
		_, msg := n.buffer.At(iter)
		if msg.Op != base.OpUpdate {
			precondition("message folded in stage 2 for %v is not an update", k)
		}
		v = ctx.Combine(v, msg.Val)
		iter++
	}
	return v, nil
}

func (n *Node[K, V]) queryRoutedChild(ctx *Context[K, V], k K) (V, error) {
	var zero V
	idx, ok := routeChild(n.pivots, k)
	if !ok {
		return zero, ErrNotFound
	}
	_, info := n.pivots.At(idx)
	return info.child.Query(ctx, k)
}
