package deque

import "errors"

var (
	// ErrNotFound is returned by [Queue.Remove] when the value has no
	// occurrences in the sequence.
	ErrNotFound = errors.New("deque: value not found")

	// ErrIndexOutOfRange is returned by [Queue.Set] when the index lies
	// outside the current bounds of the sequence. Backend adapters wrap
	// the store's own range error with this sentinel, so errors.Is works
	// regardless of backend.
	ErrIndexOutOfRange = errors.New("deque: index out of range")
)
