// Package betree implements the in-memory core of a write-optimized,
// message-buffered search tree in the Bε-tree family: inserts, updates,
// and deletes are journaled as timestamped messages that accumulate at
// interior nodes and flush toward the leaves in batches, trading extra
// read-time replay for cheap writes.
package betree

import (
	"betree/internal/base"
	"betree/internal/compare"
	"betree/internal/tree"
)

// Tree is the public façade: it owns the root node, the timestamp
// counter, and the tuning parameters, and exposes Insert/Update/Erase/
// Query. A Tree is specified as single-threaded cooperative — callers
// needing concurrent access must serialize it externally.
type Tree[K any, V any] struct {
	root *tree.Node[K, V]
	ctx  *tree.Context[K, V]
	ts   base.AtomicTimestamp
}

// New builds an empty Tree. cmp orders keys; combine folds an Update
// message's value onto the standing value for its key (or onto zero, if
// the key is absent); zero is the default value seed (V₀).
func New[K any, V any](cmp compare.Compare[K], combine func(a, b V) V, zero V, opts ...Option[K, V]) *Tree[K, V] {
	cfg := defaultConfig[K, V](combine, zero)
	for _, o := range opts {
		o.apply(cfg)
	}

	ctx := &tree.Context[K, V]{
		Cmp:     cmp,
		Combine: cfg.combine,
		Zero:    cfg.zero,
		Tuning: tree.Tuning{
			MaxNodeSize:  cfg.maxNodeSize,
			MinNodeSize:  cfg.minNodeSize,
			MinFlushSize: cfg.minFlushSize,
		},
	}

	return &Tree[K, V]{
		root: tree.NewNode[K, V](ctx),
		ctx:  ctx,
	}
}

// Insert submits an INSERT message for k, replacing any prior value.
func (t *Tree[K, V]) Insert(k K, v V) {
	t.submit(k, base.Message[V]{Op: base.OpInsert, Val: v})
}

// Update submits an UPDATE message for k: v is combined with whatever
// value k currently holds, or with the tree's zero value if k is absent.
func (t *Tree[K, V]) Update(k K, v V) {
	t.submit(k, base.Message[V]{Op: base.OpUpdate, Val: v})
}

// Erase submits a DELETE message for k. Erasing an absent key is a no-op
// from the caller's perspective; a second Erase of the same key leaves the
// query result unchanged.
func (t *Tree[K, V]) Erase(k K) {
	t.submit(k, base.Message[V]{Op: base.OpDelete, Val: t.ctx.Zero})
}

// Query returns the current value for k, or ErrNotFound if k is absent.
func (t *Tree[K, V]) Query(k K) (V, error) {
	return t.root.Query(t.ctx, k)
}

// Stats reports a cheap, read-only snapshot of tree-wide counters: the
// root's pivot-plus-buffer size and the number of messages submitted so
// far. It does not walk the tree, so it is not a node count.
type Stats struct {
	RootSize        int
	MessagesWritten uint64
}

// Stats returns the current Stats snapshot.
func (t *Tree[K, V]) Stats() Stats {
	return Stats{
		RootSize:        t.root.Size(),
		MessagesWritten: uint64(t.ts.Load()),
	}
}

func (t *Tree[K, V]) submit(k K, msg base.Message[V]) {
	ts := t.ts.Next()
	mk := base.MessageKey[K]{Key: k, TS: ts}
	batch := tree.Batch[K, V]{{Key: mk, Val: msg}}

	if replacement := t.root.Flush(t.ctx, batch); replacement != nil {
		// The root itself split. It does not hand its slot to one of the
		// new siblings; instead it adopts the returned pivots as its own
		// pivot table, becoming the parent of the new nodes in place. The
		// tree never grows a level above the root.
		t.root.AdoptPivots(replacement)
	}
}
