// Package deque provides a double-ended queue backed by a shared,
// remotely-persisted ordered list. Multiple processes construct a [Queue]
// over the same key and the same backing store and see one sequence:
// Queues are views, not copies, and hold no client-side state beyond the
// store handle and the key.
//
// Deque is designed as a library, not a service. Pick a backend from the
// store/ tree (or implement [store.List] yourself), hand its handle to
// New, and call deque operations as ordinary Go methods.
//
// # Quick Start
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	q := deque.New(redisstore.New(client), "jobs:pending")
//
//	if err := q.Append(ctx, []byte("job-42")); err != nil { ... }
//	v, ok, err := q.PopLeft(ctx, 5*time.Second)
//
// # Atomicity
//
// Every single-primitive operation (Append, Pop, Rotate, Remove, ...) is
// exactly one store call and is as atomic as the backend makes it.
// Composite operations (Extend, ExtendLeft, and everything the
// [Exclusive] option adds) are short sequences of atomic calls with
// documented race windows; concurrent callers can observe intermediate
// states. The package takes no client-side locks: coordination between
// callers lives entirely in the store's own primitives, which is the only
// thing that works across process boundaries anyway.
//
// # Blocking
//
// Pop and PopLeft take a timeout. Zero or negative means return
// immediately; positive means block the calling goroutine until an
// element arrives or the timeout elapses. An exhausted wait yields an
// empty result, never an error.
//
// # Available Backends
//
//   - store/memory — in-memory store for development and testing
//   - store/redis — Redis lists via go-redis/v9
//   - store/bun — SQL rows via the Bun ORM (PostgreSQL dialect)
//   - store/mongo — array documents via mongo-driver/v2
package deque
