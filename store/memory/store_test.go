package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/deque"
)

const key = "k"

func push(t *testing.T, s *Store, values ...string) {
	t.Helper()
	ctx := context.Background()
	for _, v := range values {
		if err := s.PushTail(ctx, key, []byte(v)); err != nil {
			t.Fatalf("PushTail(%q) returned error: %v", v, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Push / pop primitives
// ──────────────────────────────────────────────────

func TestPushPopEnds(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "b")
	if err := s.PushHead(ctx, key, []byte("a")); err != nil {
		t.Fatalf("PushHead returned error: %v", err)
	}
	push(t, s, "c")

	tests := []struct {
		name string
		fn   func() ([]byte, bool, error)
		want string
	}{
		{"pop head", func() ([]byte, bool, error) { return s.PopHead(ctx, key) }, "a"},
		{"pop tail", func() ([]byte, bool, error) { return s.PopTail(ctx, key) }, "c"},
		{"pop last", func() ([]byte, bool, error) { return s.PopHead(ctx, key) }, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := tt.fn()
			if err != nil {
				t.Fatalf("pop returned error: %v", err)
			}
			if !ok || !bytes.Equal(v, []byte(tt.want)) {
				t.Fatalf("pop = (%q, %v), want (%q, true)", v, ok, tt.want)
			}
		})
	}

	// Drained list reads as missing.
	v, ok, err := s.PopTail(ctx, key)
	if err != nil || ok || v != nil {
		t.Fatalf("PopTail on drained list = (%q, %v, %v), want (nil, false, nil)", v, ok, err)
	}
}

func TestPopWait_CrossGoroutineWakeup(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, ok, err := s.PopHeadWait(ctx, key, 2*time.Second)
		if err != nil || !ok || !bytes.Equal(v, []byte("x")) {
			t.Errorf("PopHeadWait = (%q, %v, %v), want (\"x\", true, nil)", v, ok, err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if err := s.PushTail(ctx, key, []byte("x")); err != nil {
		t.Fatalf("PushTail returned error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("blocked pop was not woken by push")
	}
}

func TestPopWait_OtherKeyDoesNotSatisfy(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	// A push on a different key wakes the waiter, which must re-block
	// and then time out empty.
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = s.PushTail(ctx, "other", []byte("x"))
	}()

	v, ok, err := s.PopTailWait(ctx, key, 150*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("PopTailWait = (%q, %v, %v), want empty", v, ok, err)
	}
}

func TestPopWait_ContextCanceled(t *testing.T) {
	t.Parallel()
	s := New()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := s.PopTailWait(ctx, key, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("PopTailWait after cancel = %v, want context.Canceled", err)
	}
}

// ──────────────────────────────────────────────────
// Indexing
// ──────────────────────────────────────────────────

func TestIndexNormalization(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "a", "b", "c")

	tests := []struct {
		index int64
		want  string
		ok    bool
	}{
		{0, "a", true},
		{2, "c", true},
		{-1, "c", true},
		{-3, "a", true},
		{3, "", false},
		{-4, "", false},
	}

	for _, tt := range tests {
		v, ok, err := s.Index(ctx, key, tt.index)
		if err != nil {
			t.Fatalf("Index(%d) returned error: %v", tt.index, err)
		}
		if ok != tt.ok {
			t.Fatalf("Index(%d) ok = %v, want %v", tt.index, ok, tt.ok)
		}
		if ok && !bytes.Equal(v, []byte(tt.want)) {
			t.Fatalf("Index(%d) = %q, want %q", tt.index, v, tt.want)
		}
	}
}

func TestSetIndex(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "a", "b")

	if err := s.SetIndex(ctx, key, -1, []byte("B")); err != nil {
		t.Fatalf("SetIndex(-1) returned error: %v", err)
	}
	v, ok, err := s.Index(ctx, key, 1)
	if err != nil || !ok || !bytes.Equal(v, []byte("B")) {
		t.Fatalf("Index(1) after SetIndex = (%q, %v, %v), want (\"B\", true, nil)", v, ok, err)
	}

	if err := s.SetIndex(ctx, key, 2, []byte("z")); !errors.Is(err, deque.ErrIndexOutOfRange) {
		t.Fatalf("SetIndex(2) = %v, want ErrIndexOutOfRange", err)
	}
	if err := s.SetIndex(ctx, "missing", 0, []byte("z")); !errors.Is(err, deque.ErrIndexOutOfRange) {
		t.Fatalf("SetIndex on missing key = %v, want ErrIndexOutOfRange", err)
	}
}

// ──────────────────────────────────────────────────
// Whole-list operations
// ──────────────────────────────────────────────────

func TestRemoveAll(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "x", "y", "x", "x")

	n, err := s.RemoveAll(ctx, key, []byte("x"))
	if err != nil {
		t.Fatalf("RemoveAll returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("RemoveAll = %d, want 3", n)
	}

	n, err = s.RemoveAll(ctx, key, []byte("absent"))
	if err != nil {
		t.Fatalf("RemoveAll of absent value returned error: %v", err)
	}
	if n != 0 {
		t.Fatalf("RemoveAll of absent value = %d, want 0", n)
	}
}

func TestRotateTailToHead(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "a", "b", "c")
	if err := s.RotateTailToHead(ctx, key); err != nil {
		t.Fatalf("RotateTailToHead returned error: %v", err)
	}

	got, err := s.Range(ctx, key)
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if !bytes.Equal(got[i], []byte(want[i])) {
			t.Fatalf("after rotate, value[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Empty and single-element rotations are no-ops.
	if err := s.RotateTailToHead(ctx, "missing"); err != nil {
		t.Fatalf("rotate of missing key returned error: %v", err)
	}
}

func TestRange_SnapshotIsolation(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "a")
	snap, err := s.Range(ctx, key)
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}

	// Mutating the snapshot must not touch the stored value.
	snap[0][0] = 'z'
	v, ok, err := s.Index(ctx, key, 0)
	if err != nil || !ok || !bytes.Equal(v, []byte("a")) {
		t.Fatalf("Index after snapshot mutation = (%q, %v, %v), want (\"a\", true, nil)", v, ok, err)
	}
}

func TestDeleteAndLen(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	push(t, s, "a", "b")
	n, err := s.Len(ctx, key)
	if err != nil || n != 2 {
		t.Fatalf("Len = (%d, %v), want (2, nil)", n, err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	n, err = s.Len(ctx, key)
	if err != nil || n != 0 {
		t.Fatalf("Len after Delete = (%d, %v), want (0, nil)", n, err)
	}

	// Deleting a missing key is a no-op.
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete of missing key returned error: %v", err)
	}
}
