package deque

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/xraph/deque/store"
)

// Queue is a client-side view of one named ordered list in a backing
// store. It holds exactly two fields of identity: the store handle and
// the key. There is no cached copy of the contents; every operation is a
// live round trip, so two Queues built over the same key and the same
// store address the same sequence.
//
// Construction has no store-side effect, and neither does dropping a
// Queue: the underlying list persists until Clear or until the store's
// own expiry policy removes it.
//
// A Queue is safe for concurrent use whenever its [store.List] is; it
// takes no locks of its own.
type Queue struct {
	list      store.List
	key       string
	exclusive bool
	logger    *slog.Logger
}

// New creates a Queue over the list stored at key. The caller owns the
// backend handle lifecycle; the Queue never closes it.
func New(list store.List, key string, opts ...Option) *Queue {
	q := &Queue{
		list:   list,
		key:    key,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Key returns the list identifier this Queue addresses.
func (q *Queue) Key() string { return q.key }

// ──────────────────────────────────────────────────
// Pushes
// ──────────────────────────────────────────────────

// Append pushes value at the tail. One atomic store call, unless the
// [Exclusive] policy is active (see exclusive.go).
func (q *Queue) Append(ctx context.Context, value []byte) error {
	if q.exclusive {
		return q.appendExclusive(ctx, value, false)
	}
	return q.list.PushTail(ctx, q.key, value)
}

// AppendLeft pushes value at the head. One atomic store call, unless the
// [Exclusive] policy is active.
func (q *Queue) AppendLeft(ctx context.Context, value []byte) error {
	if q.exclusive {
		return q.appendExclusive(ctx, value, true)
	}
	return q.list.PushHead(ctx, q.key, value)
}

// Extend appends each value in turn. NOT atomic across values: a
// concurrent reader may observe partial progress, and a failing push
// aborts the remainder, leaving the completed pushes in place.
func (q *Queue) Extend(ctx context.Context, values ...[]byte) error {
	for _, v := range values {
		if err := q.Append(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// ExtendLeft prepends each value in turn, in input order. Because every
// push lands ahead of the previous one, the values end up at the head in
// reverse of their input order. NOT atomic across values; failure
// semantics match Extend.
func (q *Queue) ExtendLeft(ctx context.Context, values ...[]byte) error {
	for _, v := range values {
		if err := q.AppendLeft(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Pops
// ──────────────────────────────────────────────────

// Pop removes and returns the tail value. A non-positive timeout returns
// immediately; a positive timeout blocks until an element arrives or the
// timeout elapses. An empty result is (nil, false, nil), never an error.
// The pop itself is one atomic store call.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	if q.exclusive {
		return q.popExclusive(ctx, timeout, false)
	}
	return q.popTail(ctx, timeout)
}

// PopLeft removes and returns the head value, with the same timeout and
// empty-result contract as Pop.
func (q *Queue) PopLeft(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	if q.exclusive {
		return q.popExclusive(ctx, timeout, true)
	}
	return q.popHead(ctx, timeout)
}

func (q *Queue) popTail(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	if timeout > 0 {
		return q.list.PopTailWait(ctx, q.key, timeout)
	}
	return q.list.PopTail(ctx, q.key)
}

func (q *Queue) popHead(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	if timeout > 0 {
		return q.list.PopHeadWait(ctx, q.key, timeout)
	}
	return q.list.PopHead(ctx, q.key)
}

// ──────────────────────────────────────────────────
// Whole-sequence operations
// ──────────────────────────────────────────────────

// Clear deletes the underlying list. Atomic.
func (q *Queue) Clear(ctx context.Context) error {
	q.logger.Debug("clearing queue", "key", q.key)
	return q.list.Delete(ctx, q.key)
}

// Remove deletes every occurrence of value and returns how many were
// deleted. Atomic at the store level. Removing a value with zero
// occurrences returns [ErrNotFound].
func (q *Queue) Remove(ctx context.Context, value []byte) (int64, error) {
	n, err := q.list.RemoveAll(ctx, q.key, value)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

// Rotate atomically moves the tail element to the head: [a b c] becomes
// [c a b]. One step only. Rotating an empty queue is a no-op.
func (q *Queue) Rotate(ctx context.Context) error {
	return q.list.RotateTailToHead(ctx, q.key)
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Contains reports whether value is present. This is a full linear scan
// of a point-in-time snapshot: the store has no set-membership primitive
// for lists, so the cost is O(n) and the answer can be stale the moment
// it returns. A missing list reads as not containing anything.
func (q *Queue) Contains(ctx context.Context, value []byte) (bool, error) {
	members, err := q.list.Range(ctx, q.key)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if bytes.Equal(m, value) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the current length. One store call.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.list.Len(ctx, q.key)
}

// Get returns the value at index. Zero-based from the head; negative
// indices count from the tail, so Get(ctx, -1) is the tail value. Out of
// range yields (nil, false, nil).
func (q *Queue) Get(ctx context.Context, index int64) ([]byte, bool, error) {
	return q.list.Index(ctx, q.key, index)
}

// Set overwrites the value at index, with Get's index convention. An
// out-of-range index returns an error matching [ErrIndexOutOfRange].
func (q *Queue) Set(ctx context.Context, index int64, value []byte) error {
	return q.list.SetIndex(ctx, q.key, index, value)
}

// Values returns every element, head to tail, as one eagerly-fetched
// snapshot. Each call re-fetches, so iteration is restartable but only
// consistent as of its own fetch. Full scan, O(n).
func (q *Queue) Values(ctx context.Context) ([][]byte, error) {
	return q.list.Range(ctx, q.key)
}
