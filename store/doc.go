// Package store defines the list-primitive contract deque backends
// implement.
//
// [List] names exactly the operations the deque layer composes: pushes,
// non-blocking and bounded-blocking pops at either end, length, indexed
// get and set, full-range snapshot, remove-all-matching, a single
// tail-to-head rotation step, and key deletion. Nothing in the deque
// layer assumes any capability beyond this set.
//
// # Available Backends
//
//   - store/memory — in-memory implementation for development and testing
//   - store/redis — Redis lists via go-redis/v9
//   - store/bun — SQL rows via the Bun ORM (PostgreSQL dialect)
//   - store/mongo — array documents via mongo-driver/v2
//
// # Usage
//
//	import (
//	    goredis "github.com/redis/go-redis/v9"
//	    redisstore "github.com/xraph/deque/store/redis"
//	)
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	q := deque.New(redisstore.New(client), "jobs:pending")
//
// Lifecycle stays with the caller: backends never close the client,
// database, or session handle they were constructed with.
package store
