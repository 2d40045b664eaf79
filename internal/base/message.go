package base

// Op identifies the kind of write a Message records, mirroring the way an
// internal key's kind byte distinguishes a set from a delete from a merge.
type Op uint8

const (
	// OpInsert replaces any prior messages for the key with Val.
	OpInsert Op = iota
	// OpDelete silently removes the key at a leaf, or records a tombstone
	// at an interior node so it can later cancel out older buffered
	// messages for the same key during a flush.
	OpDelete
	// OpUpdate combines Val with whatever value the key already carries
	// (or with the tree's zero value, if the key is absent) via the
	// caller-supplied combine function.
	OpUpdate
)

// String renders the op the way a debugger or test failure message wants to
// see it.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Message is a single buffered write: what to do (Op) and, for Insert and
// Update, the value to do it with.
type Message[V any] struct {
	Op  Op
	Val V
}

// MessageKey orders messages lexicographically by Key first and Timestamp
// second, so that all messages for a given Key sort together in the order
// they were issued.
type MessageKey[K any] struct {
	Key K
	TS  Timestamp
}

// RangeStart returns the lowest possible MessageKey for key, suitable as the
// inclusive lower bound of a half-open range covering every message ever
// issued against key.
func RangeStart[K any](key K) MessageKey[K] {
	return MessageKey[K]{Key: key, TS: TimestampZero}
}

// RangeEnd returns the highest possible MessageKey for key, suitable as the
// exclusive upper bound of a half-open range covering every message ever
// issued against key.
func RangeEnd[K any](key K) MessageKey[K] {
	return MessageKey[K]{Key: key, TS: TimestampMax}
}

// CompareMessageKeys orders a and b the way the tree needs MessageKeys
// ordered: by Key using cmp, then by TS.
func CompareMessageKeys[K any](cmp func(a, b K) int) func(a, b MessageKey[K]) int {
	return func(a, b MessageKey[K]) int {
		if c := cmp(a.Key, b.Key); c != 0 {
			return c
		}
		switch {
		case a.TS < b.TS:
			return -1
		case a.TS > b.TS:
			return 1
		default:
			return 0
		}
	}
}
