//go:build integration

package bunstore_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/xraph/deque"
	bunstore "github.com/xraph/deque/store/bun"
)

// setupTestStore creates a Postgres container and returns a migrated Store.
func setupTestStore(t *testing.T) *bunstore.Store {
	t.Helper()

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("deque_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	s := bunstore.New(db, bunstore.WithPollInterval(20*time.Millisecond))
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	return s
}

func TestQueueRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := deque.New(s, "it:roundtrip")

	if err := q.Extend(ctx, []byte("a"), []byte("b"), []byte("c")); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if err := q.AppendLeft(ctx, []byte("z")); err != nil {
		t.Fatalf("AppendLeft: %v", err)
	}

	got, err := q.Values(ctx)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	want := []string{"z", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], []byte(want[i])) {
			t.Fatalf("value[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	v, ok, err := q.Pop(ctx, 0)
	if err != nil || !ok || !bytes.Equal(v, []byte("c")) {
		t.Fatalf("Pop = (%q, %v, %v), want (\"c\", true, nil)", v, ok, err)
	}
	v, ok, err = q.PopLeft(ctx, 0)
	if err != nil || !ok || !bytes.Equal(v, []byte("z")) {
		t.Fatalf("PopLeft = (%q, %v, %v), want (\"z\", true, nil)", v, ok, err)
	}
}

func TestRotateAndIndexing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := deque.New(s, "it:rotate")

	if err := q.Extend(ctx, []byte("a"), []byte("b"), []byte("c")); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if err := q.Rotate(ctx); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	v, ok, err := q.Get(ctx, 0)
	if err != nil || !ok || !bytes.Equal(v, []byte("c")) {
		t.Fatalf("Get(0) after rotate = (%q, %v, %v), want (\"c\", true, nil)", v, ok, err)
	}
	v, ok, err = q.Get(ctx, -1)
	if err != nil || !ok || !bytes.Equal(v, []byte("b")) {
		t.Fatalf("Get(-1) after rotate = (%q, %v, %v), want (\"b\", true, nil)", v, ok, err)
	}

	if err := q.Set(ctx, 1, []byte("A")); err != nil {
		t.Fatalf("Set(1): %v", err)
	}
	v, ok, err = q.Get(ctx, 1)
	if err != nil || !ok || !bytes.Equal(v, []byte("A")) {
		t.Fatalf("Get(1) after Set = (%q, %v, %v), want (\"A\", true, nil)", v, ok, err)
	}
	if err := q.Set(ctx, 9, []byte("z")); !errors.Is(err, deque.ErrIndexOutOfRange) {
		t.Fatalf("Set(9) = %v, want ErrIndexOutOfRange", err)
	}

	// Rotating an empty list is a no-op.
	if err := deque.New(s, "it:rotate:empty").Rotate(ctx); err != nil {
		t.Fatalf("Rotate on empty: %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := deque.New(s, "it:remove")

	if err := q.Extend(ctx, []byte("x"), []byte("y"), []byte("x")); err != nil {
		t.Fatalf("Extend: %v", err)
	}

	n, err := q.Remove(ctx, []byte("x"))
	if err != nil || n != 2 {
		t.Fatalf("Remove = (%d, %v), want (2, nil)", n, err)
	}
	if _, err := q.Remove(ctx, []byte("x")); !errors.Is(err, deque.ErrNotFound) {
		t.Fatalf("Remove of absent value = %v, want ErrNotFound", err)
	}

	if err := q.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	n64, err := q.Len(ctx)
	if err != nil || n64 != 0 {
		t.Fatalf("Len after Clear = (%d, %v), want (0, nil)", n64, err)
	}
}

func TestBlockingPopPolls(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := deque.New(s, "it:blocking")

	// Empty wait times out to an empty result.
	start := time.Now()
	v, ok, err := q.PopLeft(ctx, 300*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("PopLeft on empty = (%q, %v, %v), want empty", v, ok, err)
	}
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Fatalf("PopLeft returned after %v, want approximately 300ms", elapsed)
	}

	// A push from a second view satisfies a polling wait.
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = deque.New(s, "it:blocking").Append(ctx, []byte("late"))
	}()
	v, ok, err = q.PopLeft(ctx, 5*time.Second)
	if err != nil || !ok || !bytes.Equal(v, []byte("late")) {
		t.Fatalf("PopLeft = (%q, %v, %v), want (\"late\", true, nil)", v, ok, err)
	}
}
