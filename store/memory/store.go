package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/xraph/deque"
	"github.com/xraph/deque/store"
)

// Ensure Store implements store.List at compile time.
var _ store.List = (*Store)(nil)

// Store is a fully in-memory implementation of store.List.
// Safe for concurrent access. Intended for unit testing and development.
//
// Every primitive holds one mutex for its whole duration, which makes
// each call atomic in exactly the sense the remote backends are. Values
// are copied on the way in and on the way out so callers never alias
// internal buffers.
type Store struct {
	mu    sync.Mutex
	lists map[string][][]byte

	// wake is closed and replaced on every push so blocked pops can
	// re-check their list.
	wake chan struct{}
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		lists: make(map[string][][]byte),
		wake:  make(chan struct{}),
	}
}

// Ping always succeeds for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Pushes
// ──────────────────────────────────────────────────

// PushTail appends value at the tail of the list.
func (s *Store) PushTail(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], bytes.Clone(value))
	s.broadcast()
	return nil
}

// PushHead prepends value at the head of the list.
func (s *Store) PushHead(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([][]byte{bytes.Clone(value)}, s.lists[key]...)
	s.broadcast()
	return nil
}

// broadcast wakes every goroutine blocked in a Wait pop.
// Callers must hold s.mu.
func (s *Store) broadcast() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// ──────────────────────────────────────────────────
// Pops
// ──────────────────────────────────────────────────

// PopTail removes and returns the tail value.
func (s *Store) PopTail(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(key, false)
}

// PopHead removes and returns the head value.
func (s *Store) PopHead(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(key, true)
}

// PopTailWait blocks until a tail value is available or timeout elapses.
func (s *Store) PopTailWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	return s.popWait(ctx, key, timeout, false)
}

// PopHeadWait blocks until a head value is available or timeout elapses.
func (s *Store) PopHeadWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	return s.popWait(ctx, key, timeout, true)
}

func (s *Store) popWait(ctx context.Context, key string, timeout time.Duration, head bool) ([]byte, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		v, ok, err := s.popLocked(key, head)
		if ok || err != nil {
			s.mu.Unlock()
			return v, ok, err
		}
		wake := s.wake
		s.mu.Unlock()

		select {
		case <-wake:
			// A push happened somewhere; re-check our list.
		case <-timer.C:
			return nil, false, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// popLocked removes one element from the named list.
// Callers must hold s.mu.
func (s *Store) popLocked(key string, head bool) ([]byte, bool, error) {
	l := s.lists[key]
	if len(l) == 0 {
		return nil, false, nil
	}

	var v []byte
	if head {
		v, s.lists[key] = l[0], l[1:]
	} else {
		v, s.lists[key] = l[len(l)-1], l[:len(l)-1]
	}
	if len(s.lists[key]) == 0 {
		delete(s.lists, key)
	}
	return v, true, nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Len returns the current length of the list.
func (s *Store) Len(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lists[key])), nil
}

// Index returns the value at index; negative indices count from the tail.
func (s *Store) Index(_ context.Context, key string, index int64) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	i, ok := normalize(index, int64(len(l)))
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(l[i]), true, nil
}

// Range returns a snapshot of all elements, head to tail.
func (s *Store) Range(_ context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	out := make([][]byte, len(l))
	for i, v := range l {
		out[i] = bytes.Clone(v)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// SetIndex overwrites the value at index.
func (s *Store) SetIndex(_ context.Context, key string, index int64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	i, ok := normalize(index, int64(len(l)))
	if !ok {
		return deque.ErrIndexOutOfRange
	}
	l[i] = bytes.Clone(value)
	return nil
}

// RemoveAll deletes every element equal to value.
func (s *Store) RemoveAll(_ context.Context, key string, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	kept := l[:0]
	var removed int64
	for _, v := range l {
		if bytes.Equal(v, value) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		delete(s.lists, key)
	} else {
		s.lists[key] = kept
	}
	return removed, nil
}

// RotateTailToHead moves the tail element to the head, one step.
func (s *Store) RotateTailToHead(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	if len(l) < 2 {
		return nil
	}
	tail := l[len(l)-1]
	copy(l[1:], l[:len(l)-1])
	l[0] = tail
	return nil
}

// Delete removes the list and all its elements.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, key)
	return nil
}

// normalize resolves a possibly-negative index against length n.
func normalize(index, n int64) (int64, bool) {
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return 0, false
	}
	return index, true
}
