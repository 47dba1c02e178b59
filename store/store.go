package store

import (
	"context"
	"time"
)

// List is the primitive contract a backend must provide for one named
// ordered list. Every method is a single store-level operation on the
// list identified by key; whatever atomicity the backend gives that
// operation is the atomicity the deque layer inherits.
//
// Values are opaque byte sequences. Implementations must not inspect,
// transform, or retain them beyond the call.
//
// Implementations accept their connection handle in their constructor
// and never close it; handles are shared and externally owned. A List
// must be safe for concurrent use whenever its underlying handle is.
type List interface {
	// PushTail appends value at the tail of the list, creating the list
	// if it does not exist.
	PushTail(ctx context.Context, key string, value []byte) error

	// PushHead prepends value at the head of the list, creating the list
	// if it does not exist.
	PushHead(ctx context.Context, key string, value []byte) error

	// PopTail removes and returns the tail value. A missing or empty
	// list yields (nil, false, nil).
	PopTail(ctx context.Context, key string) ([]byte, bool, error)

	// PopHead removes and returns the head value. A missing or empty
	// list yields (nil, false, nil).
	PopHead(ctx context.Context, key string) ([]byte, bool, error)

	// PopTailWait behaves like PopTail but blocks until an element is
	// available or timeout elapses. An exhausted wait yields
	// (nil, false, nil), not an error. timeout must be positive; the
	// deque layer routes non-positive timeouts to PopTail.
	PopTailWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error)

	// PopHeadWait is the head-side counterpart of PopTailWait.
	PopHeadWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error)

	// Len returns the current length of the list. A missing list has
	// length zero.
	Len(ctx context.Context, key string) (int64, error)

	// Index returns the value at index. Zero-based from the head;
	// negative indices count from the tail (-1 is the tail value).
	// Out of range yields (nil, false, nil).
	Index(ctx context.Context, key string, index int64) ([]byte, bool, error)

	// SetIndex overwrites the value at index, with the same index
	// convention as Index. An out-of-range index (including a missing
	// list) returns an error wrapping deque.ErrIndexOutOfRange.
	SetIndex(ctx context.Context, key string, index int64, value []byte) error

	// Range returns all elements head to tail as a point-in-time
	// snapshot. A missing list yields an empty result.
	Range(ctx context.Context, key string) ([][]byte, error)

	// RemoveAll deletes every element equal to value and reports how
	// many were deleted. Zero is a valid count, not an error.
	RemoveAll(ctx context.Context, key string, value []byte) (int64, error)

	// RotateTailToHead atomically moves the tail element to the head,
	// one step. Rotating a missing or empty list is a no-op.
	RotateTailToHead(ctx context.Context, key string) error

	// Delete removes the list and all its elements. Deleting a missing
	// list is a no-op.
	Delete(ctx context.Context, key string) error
}
